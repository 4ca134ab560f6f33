// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemgr

import (
	"github.com/pkg/errors"

	"github.com/rstake/node/builtin/minter"
	"github.com/rstake/node/builtin/stakemgr/ledger"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/builtin/stakemgr/unstake"
	"github.com/rstake/node/builtin/stakeprog"
	"github.com/rstake/node/builtin/storage"
	"github.com/rstake/node/log"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

var logger = log.WithContext("pkg", "stakemgr")

var (
	ErrNotInitialized     = errors.New("stakemgr: ledger not initialized")
	ErrAlreadyInitialized = errors.New("stakemgr: ledger already initialized")
)

// Minter is the derivative token the pool mints and burns.
type Minter interface {
	Address() rstake.Address
	Mint(authority, to rstake.Address, amount uint64) error
	Burn(authority, owner rstake.Address, amount uint64) error
	Transfer(authority, owner, to rstake.Address, amount uint64) error
	Account(owner rstake.Address) (*minter.TokenAccount, error)
}

// Bank moves the base asset.
type Bank interface {
	Balance(addr rstake.Address) (uint64, error)
	Transfer(from, to rstake.Address, amount uint64) error
}

// Delegator manages the stake records the pool delegates through.
type Delegator interface {
	Reserve() (uint64, error)
	Balance(record rstake.Address) (uint64, error)
	Delegation(record rstake.Address) (*stakeprog.Delegation, error)
	Create(payer, record, authority rstake.Address) error
	Delegate(record, authority, voter rstake.Address, epoch uint64) error
	Split(record, authority rstake.Address, amount uint64, dst rstake.Address) error
	Merge(dst, src, authority rstake.Address) error
	Deactivate(record, authority rstake.Address, epoch uint64) error
	Withdraw(record, authority, to rstake.Address, amount, epoch uint64) error
	Redelegate(record, authority, voter, dst rstake.Address, epoch uint64) error
}

// Manager implements the stake manager of one pool.
type Manager struct {
	addr rstake.Address
	pool rstake.Address

	ledgerService  *ledger.Service
	unstakeService *unstake.Service

	minter    Minter
	bank      Bank
	delegator Delegator

	events []*Event
}

// New creates the manager at addr. Unstake accounts are kept in the shared registry.
func New(addr rstake.Address, state *state.State, minter Minter, bank Bank, delegator Delegator) *Manager {
	return &Manager{
		addr:           addr,
		pool:           rstake.PoolAddress(addr),
		ledgerService:  ledger.New(storage.NewContext(addr, state)),
		unstakeService: unstake.New(storage.NewContext(rstake.UnstakeAccountAddress, state)),
		minter:         minter,
		bank:           bank,
		delegator:      delegator,
	}
}

// Address returns the address of the manager.
func (m *Manager) Address() rstake.Address {
	return m.addr
}

// Pool returns the custody address of the pool, which is also its mint authority.
func (m *Manager) Pool() rstake.Address {
	return m.pool
}

//
// Getters - no state change
//

// Ledger returns the ledger, nil if not initialized.
func (m *Manager) Ledger() (*ledger.Ledger, error) {
	return m.ledgerService.Get()
}

// UnstakeAccount returns the unstake account with id, nil if absent.
func (m *Manager) UnstakeAccount(id rstake.Address) (*unstake.Account, error) {
	return m.unstakeService.Get(id)
}

// PoolBalance returns the base asset held by the pool custody.
func (m *Manager) PoolBalance() (uint64, error) {
	return m.bank.Balance(m.pool)
}

// TakeEvents returns the events emitted since the last call and clears them.
func (m *Manager) TakeEvents() []*Event {
	events := m.events
	m.events = nil
	return events
}

func (m *Manager) load() (*ledger.Ledger, error) {
	l, err := m.ledgerService.Get()
	if err != nil {
		return nil, err
	}
	if !l.IsInitialized() {
		return nil, ErrNotInitialized
	}
	return l, nil
}

func (m *Manager) emit(kind Kind, era uint64, payload any) {
	m.events = append(m.events, &Event{Kind: kind, Era: era, Payload: payload})
}

// availableInPool returns the pool balance above its rent reserve.
func (m *Manager) availableInPool(l *ledger.Ledger) (uint64, error) {
	balance, err := m.bank.Balance(m.pool)
	if err != nil {
		return 0, err
	}
	if balance < l.RentExemptForPool {
		return 0, nil
	}
	return balance - l.RentExemptForPool, nil
}

// checkRent ensures payer can fund count new records.
func (m *Manager) checkRent(payer rstake.Address, count uint64) error {
	reserve, err := m.delegator.Reserve()
	if err != nil {
		return err
	}
	balance, err := m.bank.Balance(payer)
	if err != nil {
		return err
	}
	if balance/count < reserve {
		return reverts.Newf(reverts.RentNotEnough, "payer %v holds %d, needs %d per record", payer, balance, reserve)
	}
	return nil
}
