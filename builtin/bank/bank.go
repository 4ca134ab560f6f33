// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bank moves the base asset between accounts.
package bank

import (
	"github.com/pkg/errors"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

// ErrInsufficientBalance is returned when the sender cannot cover a transfer.
var ErrInsufficientBalance = errors.New("bank: insufficient balance")

type Bank struct {
	state *state.State
}

func New(state *state.State) *Bank {
	return &Bank{state}
}

// Balance returns the base asset balance of addr.
func (b *Bank) Balance(addr rstake.Address) (uint64, error) {
	return b.state.GetBalance(addr)
}

// Transfer moves amount from one account to another.
func (b *Bank) Transfer(from, to rstake.Address, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	ok, err := b.state.SubBalance(from, amount)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithMessagef(ErrInsufficientBalance, "%v pays %d", from, amount)
	}
	return b.state.AddBalance(to, amount)
}

// Mint credits amount to addr out of nothing. Used to fund accounts at genesis
// and to realize staking rewards.
func (b *Bank) Mint(to rstake.Address, amount uint64) error {
	return b.state.AddBalance(to, amount)
}
