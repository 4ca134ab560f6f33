// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package minter implements the derivative token: owner balances with a single
// spending delegate each, a total supply, and a list of external authorities
// that are allowed to mint.
package minter

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/rstake/node/builtin/storage"
	"github.com/rstake/node/log"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

var logger = log.WithContext("pkg", "minter")

var (
	ErrAlreadyInitialized    = errors.New("minter: already initialized")
	ErrAdminNotMatch         = errors.New("minter: admin not match")
	ErrMintAuthorityNotMatch = errors.New("minter: mint authority not match")
	ErrOwnerNotMatch         = errors.New("minter: owner not match")
	ErrInsufficientFunds     = errors.New("minter: insufficient funds")
	ErrOverflow              = errors.New("minter: overflow")
)

var (
	slotAdmin       = storage.Slot("admin")
	slotAuthorities = storage.Slot("ext-mint-authorities")
	slotSupply      = storage.Slot("supply")
	slotAccounts    = storage.Slot("accounts")
)

// TokenAccount is the derivative holding of an owner.
type TokenAccount struct {
	Balance         uint64
	Delegate        rstake.Address
	DelegatedAmount uint64
}

// Minter implements the derivative token program.
type Minter struct {
	addr        rstake.Address
	admin       *storage.Raw[rstake.Address]
	authorities *storage.Raw[[]rstake.Address]
	supply      *storage.Raw[uint64]
	accounts    *storage.Mapping[rstake.Address, *TokenAccount]
}

func New(addr rstake.Address, state *state.State) *Minter {
	sctx := storage.NewContext(addr, state)
	return &Minter{
		addr:        addr,
		admin:       storage.NewRaw[rstake.Address](sctx, slotAdmin),
		authorities: storage.NewRaw[[]rstake.Address](sctx, slotAuthorities),
		supply:      storage.NewRaw[uint64](sctx, slotSupply),
		accounts:    storage.NewMapping[rstake.Address, *TokenAccount](sctx, slotAccounts),
	}
}

// Address returns the address of the token, which is the derivative mint.
func (m *Minter) Address() rstake.Address {
	return m.addr
}

//
// Getters - no state change
//

func (m *Minter) Admin() (rstake.Address, error) {
	return m.admin.Get()
}

func (m *Minter) ExtMintAuthorities() ([]rstake.Address, error) {
	return m.authorities.Get()
}

func (m *Minter) TotalSupply() (uint64, error) {
	return m.supply.Get()
}

// Account returns the token account of owner. Absent accounts are empty.
func (m *Minter) Account(owner rstake.Address) (*TokenAccount, error) {
	acc, err := m.accounts.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get token account")
	}
	if acc == nil {
		acc = &TokenAccount{}
	}
	return acc, nil
}

func (m *Minter) BalanceOf(owner rstake.Address) (uint64, error) {
	acc, err := m.Account(owner)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

//
// Setters - state change
//

// Initialize sets the admin and the authorities allowed to mint.
func (m *Minter) Initialize(admin rstake.Address, authorities []rstake.Address) error {
	current, err := m.admin.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return ErrAlreadyInitialized
	}
	if err := m.admin.Upsert(admin); err != nil {
		return err
	}
	return m.authorities.Upsert(authorities)
}

// SetExtMintAuthorities replaces the authorities allowed to mint.
func (m *Minter) SetExtMintAuthorities(caller rstake.Address, authorities []rstake.Address) error {
	admin, err := m.admin.Get()
	if err != nil {
		return err
	}
	if admin != caller {
		return ErrAdminNotMatch
	}
	logger.Info("set ext mint authorities", "count", len(authorities))
	return m.authorities.Upsert(authorities)
}

func (m *Minter) updateAccount(owner rstake.Address, acc *TokenAccount) error {
	if acc.Balance == 0 && acc.DelegatedAmount == 0 {
		m.accounts.Delete(owner)
		return nil
	}
	return m.accounts.Set(owner, acc)
}

// Mint credits amount to owner. Only a listed authority may mint.
func (m *Minter) Mint(authority, to rstake.Address, amount uint64) error {
	authorities, err := m.authorities.Get()
	if err != nil {
		return err
	}
	if !slices.Contains(authorities, authority) {
		return errors.WithMessagef(ErrMintAuthorityNotMatch, "%v", authority)
	}

	supply, err := m.supply.Get()
	if err != nil {
		return err
	}
	if supply > math.MaxUint64-amount {
		return ErrOverflow
	}
	acc, err := m.Account(to)
	if err != nil {
		return err
	}
	acc.Balance += amount

	if err := m.supply.Upsert(supply + amount); err != nil {
		return err
	}
	logger.Debug("minted", "to", to, "amount", amount)
	return m.updateAccount(to, acc)
}

// spend debits amount from owner's account on behalf of authority, which is either
// the owner itself or its delegate within the delegated amount.
func (m *Minter) spend(authority, owner rstake.Address, amount uint64) error {
	acc, err := m.Account(owner)
	if err != nil {
		return err
	}
	switch {
	case !acc.Delegate.IsZero() && acc.Delegate == authority:
		if acc.DelegatedAmount < amount {
			return errors.WithMessagef(ErrInsufficientFunds, "delegated %d < %d", acc.DelegatedAmount, amount)
		}
		acc.DelegatedAmount -= amount
		if acc.DelegatedAmount == 0 {
			acc.Delegate = rstake.Address{}
		}
	case authority == owner:
	default:
		return ErrOwnerNotMatch
	}
	if acc.Balance < amount {
		return errors.WithMessagef(ErrInsufficientFunds, "balance %d < %d", acc.Balance, amount)
	}
	acc.Balance -= amount
	return m.updateAccount(owner, acc)
}

// Burn destroys amount of owner's balance.
func (m *Minter) Burn(authority, owner rstake.Address, amount uint64) error {
	supply, err := m.supply.Get()
	if err != nil {
		return err
	}
	if supply < amount {
		return ErrInsufficientFunds
	}
	if err := m.spend(authority, owner, amount); err != nil {
		return err
	}
	logger.Debug("burned", "from", owner, "amount", amount)
	return m.supply.Upsert(supply - amount)
}

// Transfer moves amount from owner to the given account.
func (m *Minter) Transfer(authority, owner, to rstake.Address, amount uint64) error {
	if err := m.spend(authority, owner, amount); err != nil {
		return err
	}
	acc, err := m.Account(to)
	if err != nil {
		return err
	}
	if acc.Balance > math.MaxUint64-amount {
		return ErrOverflow
	}
	acc.Balance += amount
	return m.updateAccount(to, acc)
}

// Approve sets delegate as the spender of up to amount of owner's balance.
// A zero amount revokes the delegate.
func (m *Minter) Approve(owner, delegate rstake.Address, amount uint64) error {
	acc, err := m.Account(owner)
	if err != nil {
		return err
	}
	if amount == 0 {
		acc.Delegate, acc.DelegatedAmount = rstake.Address{}, 0
	} else {
		acc.Delegate, acc.DelegatedAmount = delegate, amount
	}
	return m.updateAccount(owner, acc)
}
