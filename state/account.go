// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// Account is the state of a base asset holder.
type Account struct {
	Balance uint64
}

// IsEmpty returns if an account is empty.
// An empty account is deleted from the store.
func (a *Account) IsEmpty() bool {
	return a.Balance == 0
}

func decodeAccount(raw []byte) (*Account, error) {
	if len(raw) == 0 {
		return &Account{}, nil
	}
	var a Account
	if err := rlp.DecodeBytes(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func encodeAccount(a *Account) ([]byte, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(a)
}
