// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"
	"github.com/rstake/node/builtin/storage"
)

var slotLedger = storage.Slot("ledger")

// Service stores the ledger of a pool.
type Service struct {
	ledger *storage.Raw[*Ledger]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		ledger: storage.NewRaw[*Ledger](sctx, slotLedger),
	}
}

// Get returns the stored ledger, nil if the pool is not initialized.
func (s *Service) Get() (*Ledger, error) {
	l, err := s.ledger.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ledger")
	}
	return l, nil
}

func (s *Service) Set(l *Ledger) error {
	if err := s.ledger.Upsert(l); err != nil {
		return errors.Wrap(err, "failed to set ledger")
	}
	return nil
}
