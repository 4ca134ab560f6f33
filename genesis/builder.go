// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rstake/node/builtin/bank"
	"github.com/rstake/node/builtin/minter"
	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/builtin/stakeprog"
	"github.com/rstake/node/lvldb"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

// World is the set of builtin programs a genesis process works with.
type World struct {
	State   *state.State
	Bank    *bank.Bank
	Minter  *minter.Minter
	Program *stakeprog.Program
	Manager *stakemgr.Manager
}

func newWorld(st *state.State, manager rstake.Address) *World {
	w := &World{
		State:   st,
		Bank:    bank.New(st),
		Minter:  minter.New(rstake.MinterAddress, st),
		Program: stakeprog.New(rstake.StakeProgramAddress, st),
	}
	w.Manager = stakemgr.New(manager, st, w.Minter, w.Bank, w.Program)
	return w
}

// Builder helper to build the genesis world.
type Builder struct {
	manager rstake.Address
	procs   []func(w *World) error
}

// Manager sets the address of the stake manager.
func (b *Builder) Manager(addr rstake.Address) *Builder {
	b.manager = addr
	return b
}

// State adds a process run against the world.
func (b *Builder) State(proc func(w *World) error) *Builder {
	b.procs = append(b.procs, proc)
	return b
}

// Build runs all processes on st. Changes are left uncommitted.
func (b *Builder) Build(st *state.State) error {
	_, err := b.build(st)
	return err
}

func (b *Builder) build(st *state.State) (*World, error) {
	w := newWorld(st, b.manager)
	for _, proc := range b.procs {
		if err := proc(w); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}
	// genesis initialization is not part of the event history
	w.Manager.TakeEvents()
	return w, nil
}

// ComputeID builds into a scratch state and hashes the resulting ledger.
// Balances are not part of the id.
func (b *Builder) ComputeID() (rstake.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return rstake.Bytes32{}, err
	}
	defer db.Close()

	w, err := b.build(state.New(db))
	if err != nil {
		return rstake.Bytes32{}, err
	}
	l, err := w.Manager.Ledger()
	if err != nil {
		return rstake.Bytes32{}, err
	}
	enc, err := rlp.EncodeToBytes(l)
	if err != nil {
		return rstake.Bytes32{}, err
	}
	return rstake.Blake2b(b.manager.Bytes(), enc), nil
}
