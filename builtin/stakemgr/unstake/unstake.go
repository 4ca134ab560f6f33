// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package unstake keeps the withdrawal requests of all pools.
package unstake

import (
	"github.com/pkg/errors"
	"github.com/rstake/node/builtin/storage"
	"github.com/rstake/node/rstake"
)

var (
	slotAccounts = storage.Slot("unstake-accounts")
	slotNonces   = storage.Slot("unstake-nonces")

	seedUnstake = []byte("unstake")
)

// Account is a withdrawal request. StakeManager refers back to the pool that created it.
type Account struct {
	StakeManager rstake.Address
	Recipient    rstake.Address
	Amount       uint64
	CreatedEpoch uint64
}

// Service is the registry of withdrawal requests.
type Service struct {
	accounts *storage.Mapping[rstake.Address, *Account]
	nonces   *storage.Mapping[rstake.Address, uint64]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		accounts: storage.NewMapping[rstake.Address, *Account](sctx, slotAccounts),
		nonces:   storage.NewMapping[rstake.Address, uint64](sctx, slotNonces),
	}
}

// Create records a new request of the manager and returns its address.
func (s *Service) Create(acc *Account) (rstake.Address, error) {
	nonce, err := s.nonces.Get(acc.StakeManager)
	if err != nil {
		return rstake.Address{}, errors.Wrap(err, "failed to get unstake nonce")
	}
	id := rstake.DeriveAddress(acc.StakeManager.Bytes(), seedUnstake, rstake.Uint64Seed(nonce))

	if err := s.nonces.Set(acc.StakeManager, nonce+1); err != nil {
		return rstake.Address{}, errors.Wrap(err, "failed to set unstake nonce")
	}
	if err := s.accounts.Set(id, acc); err != nil {
		return rstake.Address{}, errors.Wrap(err, "failed to set unstake account")
	}
	return id, nil
}

// Get returns the request, nil if absent.
func (s *Service) Get(id rstake.Address) (*Account, error) {
	acc, err := s.accounts.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get unstake account")
	}
	return acc, nil
}

// Close removes the request.
func (s *Service) Close(id rstake.Address) {
	s.accounts.Delete(id)
}
