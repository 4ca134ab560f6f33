// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed storage slots for builtin programs.
package storage

import (
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

// Context binds a program address to the state it reads and writes.
type Context struct {
	address rstake.Address
	state   *state.State
}

func NewContext(address rstake.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() rstake.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot returns the storage position of a named variable.
func Slot(name string) rstake.Bytes32 {
	return rstake.BytesToBytes32([]byte(name))
}
