// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakeprog implements the validator-stake records a pool delegates through.
//
// A record holds base asset at its own address. Part of it is a reserve that
// stays with the record until it is closed, the rest is delegated to a voter.
// A delegation is active while its deactivation epoch is rstake.MaxEpoch, and
// becomes withdrawable once the current epoch has passed the deactivation epoch.
package stakeprog

import (
	"github.com/pkg/errors"

	"github.com/rstake/node/builtin/bank"
	"github.com/rstake/node/builtin/storage"
	"github.com/rstake/node/log"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

var logger = log.WithContext("pkg", "stakeprog")

// DefaultReserve is the reserve a record is created with when none is configured.
const DefaultReserve uint64 = 2_282_880

var (
	ErrRecordExists      = errors.New("stakeprog: record already exists")
	ErrRecordNotFound    = errors.New("stakeprog: record not found")
	ErrAuthorityNotMatch = errors.New("stakeprog: authority not match")
	ErrAlreadyDelegated  = errors.New("stakeprog: record already delegated")
	ErrNotDelegated      = errors.New("stakeprog: record not delegated")
	ErrNotActive         = errors.New("stakeprog: delegation not active")
	ErrVoterNotMatch     = errors.New("stakeprog: voter not match")
	ErrSameVoter         = errors.New("stakeprog: redelegate to the same voter")
	ErrInvalidAmount     = errors.New("stakeprog: invalid amount")
	ErrInsufficientStake = errors.New("stakeprog: insufficient stake")
	ErrInsufficientFunds = errors.New("stakeprog: insufficient funds")
	ErrStakeLocked       = errors.New("stakeprog: stake locked")
)

var (
	slotReserve = storage.Slot("reserve")
	slotRecords = storage.Slot("records")
)

// Delegation is the delegated part of a record.
type Delegation struct {
	Voter             rstake.Address
	Stake             uint64
	ActivationEpoch   uint64
	DeactivationEpoch uint64
}

// IsActive returns whether the delegation has not been deactivated.
func (d *Delegation) IsActive() bool {
	return d.DeactivationEpoch == rstake.MaxEpoch
}

// Record is a stake record. Its base asset is the balance of its address.
type Record struct {
	Authority  rstake.Address
	Reserve    uint64
	Delegated  bool
	Delegation Delegation
}

// Program implements the stake program.
type Program struct {
	addr    rstake.Address
	bank    *bank.Bank
	reserve *storage.Raw[uint64]
	records *storage.Mapping[rstake.Address, *Record]
}

func New(addr rstake.Address, state *state.State) *Program {
	sctx := storage.NewContext(addr, state)
	return &Program{
		addr:    addr,
		bank:    bank.New(state),
		reserve: storage.NewRaw[uint64](sctx, slotReserve),
		records: storage.NewMapping[rstake.Address, *Record](sctx, slotRecords),
	}
}

func (p *Program) Address() rstake.Address {
	return p.addr
}

// Reserve returns the amount a new record must be funded with.
func (p *Program) Reserve() (uint64, error) {
	reserve, err := p.reserve.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get reserve")
	}
	if reserve == 0 {
		return DefaultReserve, nil
	}
	return reserve, nil
}

func (p *Program) SetReserve(reserve uint64) error {
	return p.reserve.Upsert(reserve)
}

// Record returns the record at addr, nil if it does not exist.
func (p *Program) Record(addr rstake.Address) (*Record, error) {
	rec, err := p.records.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get record")
	}
	return rec, nil
}

// Delegation returns the delegation of the record, nil if the record is absent or not delegated.
func (p *Program) Delegation(addr rstake.Address) (*Delegation, error) {
	rec, err := p.Record(addr)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.Delegated {
		return nil, nil
	}
	d := rec.Delegation
	return &d, nil
}

// Balance returns the base asset held by the record.
func (p *Program) Balance(addr rstake.Address) (uint64, error) {
	return p.bank.Balance(addr)
}

func (p *Program) authorized(addr, authority rstake.Address) (*Record, error) {
	rec, err := p.Record(addr)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.WithMessagef(ErrRecordNotFound, "%v", addr)
	}
	if rec.Authority != authority {
		return nil, ErrAuthorityNotMatch
	}
	return rec, nil
}

func (p *Program) activeDelegation(addr, authority rstake.Address) (*Record, error) {
	rec, err := p.authorized(addr, authority)
	if err != nil {
		return nil, err
	}
	if !rec.Delegated {
		return nil, ErrNotDelegated
	}
	if !rec.Delegation.IsActive() {
		return nil, ErrNotActive
	}
	return rec, nil
}

// placeholder returns an undelegated record owned by authority.
func (p *Program) placeholder(addr, authority rstake.Address) (*Record, error) {
	rec, err := p.authorized(addr, authority)
	if err != nil {
		return nil, err
	}
	if rec.Delegated {
		return nil, ErrAlreadyDelegated
	}
	return rec, nil
}

// Create opens a record under authority, funded with the reserve by payer.
func (p *Program) Create(payer, addr, authority rstake.Address) error {
	exists, err := p.records.Exists(addr)
	if err != nil {
		return errors.Wrap(err, "failed to check record")
	}
	if exists {
		return errors.WithMessagef(ErrRecordExists, "%v", addr)
	}
	reserve, err := p.Reserve()
	if err != nil {
		return err
	}
	if err := p.bank.Transfer(payer, addr, reserve); err != nil {
		return err
	}
	logger.Debug("created record", "record", addr, "payer", payer, "reserve", reserve)
	return p.records.Set(addr, &Record{Authority: authority, Reserve: reserve})
}

// Delegate delegates everything above the reserve to voter.
func (p *Program) Delegate(addr, authority, voter rstake.Address, epoch uint64) error {
	rec, err := p.placeholder(addr, authority)
	if err != nil {
		return err
	}
	balance, err := p.bank.Balance(addr)
	if err != nil {
		return err
	}
	if balance <= rec.Reserve {
		return ErrInsufficientStake
	}
	rec.Delegated = true
	rec.Delegation = Delegation{
		Voter:             voter,
		Stake:             balance - rec.Reserve,
		ActivationEpoch:   epoch,
		DeactivationEpoch: rstake.MaxEpoch,
	}
	logger.Debug("delegated", "record", addr, "voter", voter, "stake", rec.Delegation.Stake)
	return p.records.Set(addr, rec)
}

// Split moves amount of stake into dst, which must be an undelegated record of the same authority.
func (p *Program) Split(addr, authority rstake.Address, amount uint64, dst rstake.Address) error {
	src, err := p.activeDelegation(addr, authority)
	if err != nil {
		return err
	}
	if amount == 0 || amount >= src.Delegation.Stake {
		return errors.WithMessagef(ErrInvalidAmount, "split %d of %d", amount, src.Delegation.Stake)
	}
	split, err := p.placeholder(dst, authority)
	if err != nil {
		return err
	}
	if err := p.bank.Transfer(addr, dst, amount); err != nil {
		return err
	}

	src.Delegation.Stake -= amount
	split.Delegated = true
	split.Delegation = src.Delegation
	split.Delegation.Stake = amount

	if err := p.records.Set(addr, src); err != nil {
		return err
	}
	return p.records.Set(dst, split)
}

// Merge moves everything held by src into dst and closes src.
func (p *Program) Merge(dst, src, authority rstake.Address) error {
	to, err := p.activeDelegation(dst, authority)
	if err != nil {
		return err
	}
	from, err := p.activeDelegation(src, authority)
	if err != nil {
		return err
	}
	if to.Delegation.Voter != from.Delegation.Voter {
		return ErrVoterNotMatch
	}
	balance, err := p.bank.Balance(src)
	if err != nil {
		return err
	}
	if err := p.bank.Transfer(src, dst, balance); err != nil {
		return err
	}
	to.Delegation.Stake += from.Delegation.Stake
	p.records.Delete(src)
	return p.records.Set(dst, to)
}

// Deactivate marks the delegation as deactivated at epoch.
func (p *Program) Deactivate(addr, authority rstake.Address, epoch uint64) error {
	rec, err := p.activeDelegation(addr, authority)
	if err != nil {
		return err
	}
	rec.Delegation.DeactivationEpoch = epoch
	return p.records.Set(addr, rec)
}

// Withdraw moves amount out of the record. Withdrawing the whole balance closes it.
func (p *Program) Withdraw(addr, authority, to rstake.Address, amount, epoch uint64) error {
	rec, err := p.authorized(addr, authority)
	if err != nil {
		return err
	}
	if rec.Delegated && (rec.Delegation.IsActive() || epoch <= rec.Delegation.DeactivationEpoch) {
		return ErrStakeLocked
	}
	balance, err := p.bank.Balance(addr)
	if err != nil {
		return err
	}
	if amount > balance || (amount < balance && balance-amount < rec.Reserve) {
		return errors.WithMessagef(ErrInsufficientFunds, "withdraw %d of %d", amount, balance)
	}
	if err := p.bank.Transfer(addr, to, amount); err != nil {
		return err
	}
	if amount == balance {
		logger.Debug("closed record", "record", addr, "to", to, "amount", amount)
		p.records.Delete(addr)
	}
	return nil
}

// Redelegate moves the stake of the record into dst delegated to voter, and deactivates the record.
func (p *Program) Redelegate(addr, authority, voter, dst rstake.Address, epoch uint64) error {
	src, err := p.activeDelegation(addr, authority)
	if err != nil {
		return err
	}
	if src.Delegation.Voter == voter {
		return ErrSameVoter
	}
	to, err := p.placeholder(dst, authority)
	if err != nil {
		return err
	}
	balance, err := p.bank.Balance(addr)
	if err != nil {
		return err
	}
	moved := balance - src.Reserve
	if err := p.bank.Transfer(addr, dst, moved); err != nil {
		return err
	}

	to.Delegated = true
	to.Delegation = Delegation{
		Voter:             voter,
		Stake:             moved,
		ActivationEpoch:   epoch,
		DeactivationEpoch: rstake.MaxEpoch,
	}
	src.Delegation.Stake = 0
	src.Delegation.DeactivationEpoch = epoch

	logger.Debug("redelegated", "from", addr, "to", dst, "voter", voter, "stake", moved)
	if err := p.records.Set(addr, src); err != nil {
		return err
	}
	return p.records.Set(dst, to)
}

// AddRewards credits newly issued base asset to an active delegation.
func (p *Program) AddRewards(addr rstake.Address, amount uint64) error {
	rec, err := p.Record(addr)
	if err != nil {
		return err
	}
	if rec == nil || !rec.Delegated {
		return ErrNotDelegated
	}
	if !rec.Delegation.IsActive() {
		return ErrNotActive
	}
	if err := p.bank.Mint(addr, amount); err != nil {
		return err
	}
	rec.Delegation.Stake += amount
	return p.records.Set(addr, rec)
}
