// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemgr

import (
	"github.com/rstake/node/builtin/stakemgr/calc"
	"github.com/rstake/node/builtin/stakemgr/ledger"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/builtin/stakeprog"
	"github.com/rstake/node/rstake"
)

// An era runs as:
//
//	EraNew -> EraBond | EraUnbond -> EraUpdateActive (per pending record) -> EraUpdateRate
//
// Bond, unbond and observation steps target single records and may interleave.
// EraMerge, EraWithdraw and Redelegate are maintenance steps outside the cycle.

// EraNew opens the next era once epoch has reached it and the previous one is settled.
func (m *Manager) EraNew(epoch uint64) error {
	logger.Debug("opening era", "epoch", epoch)

	l, ev, err := m.eraNew(epoch)
	if err != nil {
		logger.Info("era new failed", "epoch", epoch, "error", err)
		return err
	}

	logger.Info("opened era", "era", l.LatestEra, "needBond", ev.NeedBond, "needUnbond", ev.NeedUnbond)
	return nil
}

func (m *Manager) eraNew(epoch uint64) (*ledger.Ledger, *EraNewEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, nil, err
	}
	newEra, err := calc.SafeAdd(l.LatestEra, 1)
	if err != nil {
		return nil, nil, err
	}
	if epoch < newEra {
		return nil, nil, reverts.Newf(reverts.EraIsLatest, "epoch %d, era %d", epoch, l.LatestEra)
	}
	if !l.EraProcessData.IsEmpty() {
		return nil, nil, reverts.ErrEraIsProcessing
	}

	var needBond, needUnbond uint64
	if l.EraBond > l.EraUnbond {
		needBond = l.EraBond - l.EraUnbond
	} else {
		needUnbond = l.EraUnbond - l.EraBond
	}

	l.LatestEra = newEra
	l.EraBond, l.EraUnbond = 0, 0
	l.EraProcessData = ledger.EraProcessData{
		NeedBond:             needBond,
		NeedUnbond:           needUnbond,
		OldActive:            l.Active,
		PendingStakeAccounts: l.StakeAccounts.Clone(),
	}
	if err := m.ledgerService.Set(l); err != nil {
		return nil, nil, err
	}

	ev := &EraNewEvent{NeedBond: needBond, NeedUnbond: needUnbond, Active: l.Active}
	m.emit(KindEraNew, newEra, ev)
	return l, ev, nil
}

// EraBond moves the era's bond amount from the pool into the new record and delegates it to validator.
// payer funds the record reserve.
func (m *Manager) EraBond(validator, record, payer rstake.Address, epoch uint64) error {
	logger.Debug("bonding", "validator", validator, "record", record, "payer", payer)

	ev, err := m.eraBond(validator, record, payer, epoch)
	if err != nil {
		logger.Info("era bond failed", "record", record, "error", err)
		return err
	}

	logger.Info("bonded", "validator", validator, "record", record, "amount", ev.BondAmount)
	return nil
}

func (m *Manager) eraBond(validator, record, payer rstake.Address, epoch uint64) (*EraBondEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, err
	}
	if !l.EraProcessData.NeedBondStep() {
		return nil, reverts.ErrEraNoNeedBond
	}
	if !l.Validators.Contains(validator) {
		return nil, reverts.Newf(reverts.ValidatorNotExist, "%v", validator)
	}
	if l.StakeAccounts.Contains(record) {
		return nil, reverts.Newf(reverts.StakeAccountAlreadyExist, "%v", record)
	}
	if uint64(l.StakeAccounts.Len()) >= l.StakeAccountsLenLimit {
		return nil, reverts.ErrStakeAccountsLenOverLimit
	}
	if err := m.checkRent(payer, 1); err != nil {
		return nil, err
	}
	amount := l.EraProcessData.NeedBond
	available, err := m.availableInPool(l)
	if err != nil {
		return nil, err
	}
	if available < amount {
		return nil, reverts.Newf(reverts.PoolBalanceNotEnough, "available %d < %d", available, amount)
	}

	if err := m.delegator.Create(payer, record, m.pool); err != nil {
		return nil, err
	}
	if err := m.bank.Transfer(m.pool, record, amount); err != nil {
		return nil, err
	}
	if err := m.delegator.Delegate(record, m.pool, validator, epoch); err != nil {
		return nil, err
	}

	l.EraProcessData.NeedBond = 0
	l.StakeAccounts.Add(record)
	l.EraProcessData.PendingStakeAccounts.Add(record)
	if err := m.ledgerService.Set(l); err != nil {
		return nil, err
	}

	ev := &EraBondEvent{StakeAccount: record, BondAmount: amount}
	m.emit(KindEraBond, l.LatestEra, ev)
	return ev, nil
}

// EraUnbond deactivates up to the era's unbond amount out of record from, which must be delegated to validator.
// If the record holds no more than the outstanding amount it is deactivated whole, otherwise the
// amount is split into the new record split first. payer funds the split reserve and is refunded
// when no split is needed.
func (m *Manager) EraUnbond(validator, from, split, payer rstake.Address, epoch uint64) error {
	logger.Debug("unbonding", "validator", validator, "from", from, "split", split)

	ev, err := m.eraUnbond(validator, from, split, payer, epoch)
	if err != nil {
		logger.Info("era unbond failed", "from", from, "error", err)
		return err
	}

	logger.Info("unbonded", "from", from, "deactivated", ev.SplitAccount, "amount", ev.UnbondAmount)
	return nil
}

func (m *Manager) eraUnbond(validator, from, split, payer rstake.Address, epoch uint64) (*EraUnbondEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, err
	}
	if !l.EraProcessData.NeedUnbondStep() {
		return nil, reverts.ErrEraNoNeedUnBond
	}
	if !l.StakeAccounts.Contains(from) {
		return nil, reverts.Newf(reverts.StakeAccountNotExist, "%v", from)
	}
	if l.SplitAccounts.Contains(split) {
		return nil, reverts.Newf(reverts.SplitStakeAccountAlreadyExist, "%v", split)
	}
	if uint64(l.SplitAccounts.Len()) >= l.SplitAccountsLenLimit {
		return nil, reverts.ErrStakeAccountsLenOverLimit
	}
	delegation, err := m.delegator.Delegation(from)
	if err != nil {
		return nil, err
	}
	if delegation == nil {
		return nil, reverts.ErrDelegationEmpty
	}
	if delegation.Voter != validator {
		return nil, reverts.Newf(reverts.ValidatorNotMatch, "delegated to %v", delegation.Voter)
	}
	if err := m.checkRent(payer, 1); err != nil {
		return nil, err
	}

	needUnbond := l.EraProcessData.NeedUnbond
	if err := m.delegator.Create(payer, split, m.pool); err != nil {
		return nil, err
	}

	var (
		deactivated rstake.Address
		amount      uint64
	)
	if delegation.Stake <= needUnbond {
		// no split needed, refund its reserve
		reserve, err := m.delegator.Balance(split)
		if err != nil {
			return nil, err
		}
		if err := m.delegator.Withdraw(split, m.pool, payer, reserve, epoch); err != nil {
			return nil, err
		}
		l.StakeAccounts.Remove(from)
		l.EraProcessData.PendingStakeAccounts.Remove(from)
		deactivated, amount = from, delegation.Stake
	} else {
		if err := m.delegator.Split(from, m.pool, needUnbond, split); err != nil {
			return nil, err
		}
		deactivated, amount = split, needUnbond
	}
	if err := m.delegator.Deactivate(deactivated, m.pool, epoch); err != nil {
		return nil, err
	}

	l.SplitAccounts.Add(deactivated)
	l.EraProcessData.NeedUnbond = needUnbond - amount
	if err := m.ledgerService.Set(l); err != nil {
		return nil, err
	}

	ev := &EraUnbondEvent{FromStakeAccount: from, SplitAccount: deactivated, UnbondAmount: amount}
	m.emit(KindEraUnbond, l.LatestEra, ev)
	return ev, nil
}

// EraUpdateActive observes the active stake of a pending record.
func (m *Manager) EraUpdateActive(record rstake.Address) error {
	logger.Debug("updating active", "record", record)

	ev, err := m.eraUpdateActive(record)
	if err != nil {
		logger.Info("era update active failed", "record", record, "error", err)
		return err
	}

	logger.Info("updated active", "record", record, "stake", ev.StakeAmount)
	return nil
}

func (m *Manager) eraUpdateActive(record rstake.Address) (*EraUpdateActiveEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, err
	}
	if !l.EraProcessData.NeedUpdateActive() {
		return nil, reverts.ErrEraNoNeedUpdateActive
	}
	if !l.EraProcessData.PendingStakeAccounts.Contains(record) {
		return nil, reverts.Newf(reverts.StakeAccountNotExist, "%v not pending", record)
	}
	delegation, err := m.delegator.Delegation(record)
	if err != nil {
		return nil, err
	}
	if delegation == nil {
		return nil, reverts.ErrDelegationEmpty
	}
	if !delegation.IsActive() {
		return nil, reverts.ErrStakeAccountNotActive
	}
	newActive, err := calc.SafeAdd(l.EraProcessData.NewActive, delegation.Stake)
	if err != nil {
		return nil, err
	}

	l.EraProcessData.PendingStakeAccounts.Remove(record)
	l.EraProcessData.NewActive = newActive
	if err := m.ledgerService.Set(l); err != nil {
		return nil, err
	}

	ev := &EraUpdateActiveEvent{StakeAccount: record, StakeAmount: delegation.Stake}
	m.emit(KindEraUpdateActive, l.LatestEra, ev)
	return ev, nil
}

// EraUpdateRate settles the era: it charges the protocol fee on the observed reward and moves
// the rate, refusing any move beyond the rate change limit.
func (m *Manager) EraUpdateRate() error {
	logger.Debug("updating rate")

	l, ev, err := m.eraUpdateRate()
	if err != nil {
		logger.Info("era update rate failed", "error", err)
		return err
	}

	logger.Info("updated rate", "era", l.LatestEra, "rate", ev.Rate, "fee", ev.Fee, "active", l.Active)
	return nil
}

func (m *Manager) eraUpdateRate() (*ledger.Ledger, *EraUpdateRateEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, nil, err
	}
	data := &l.EraProcessData
	if !data.NeedUpdateRate() {
		return nil, nil, reverts.ErrEraNoNeedUpdateRate
	}

	reward := calc.SaturatingSub(data.NewActive, data.OldActive)
	fee, err := calc.ProtocolFee(reward, l.ProtocolFeeCommission, l.Rate)
	if err != nil {
		return nil, nil, err
	}
	supply, err := calc.SafeAdd(l.TotalDerivativeSupply, fee)
	if err != nil {
		return nil, nil, err
	}
	totalFee, err := calc.SafeAdd(l.TotalProtocolFee, fee)
	if err != nil {
		return nil, nil, err
	}
	sum, err := calc.SafeAdd(l.Active, data.NewActive)
	if err != nil {
		return nil, nil, err
	}
	active := calc.SaturatingSub(sum, data.OldActive)
	rate, err := calc.NewRate(active, supply)
	if err != nil {
		return nil, nil, err
	}
	change, err := calc.RateChange(l.Rate, rate)
	if err != nil {
		return nil, nil, err
	}
	if change > l.RateChangeLimit {
		return nil, nil, reverts.Newf(reverts.RateChangeOverLimit, "%d > %d", change, l.RateChangeLimit)
	}

	if fee > 0 {
		if err := m.minter.Mint(m.pool, l.FeeRecipient, fee); err != nil {
			return nil, nil, err
		}
	}

	l.TotalDerivativeSupply, l.TotalProtocolFee = supply, totalFee
	l.Active, l.Rate = active, rate
	data.OldActive, data.NewActive = 0, 0
	if err := m.ledgerService.Set(l); err != nil {
		return nil, nil, err
	}

	ev := &EraUpdateRateEvent{Rate: rate, Fee: fee}
	m.emit(KindEraUpdateRate, l.LatestEra, ev)
	return l, ev, nil
}

// EraMerge merges record src into dst. Both must be active and delegated to the same validator.
func (m *Manager) EraMerge(src, dst rstake.Address) error {
	logger.Debug("merging", "src", src, "dst", dst)

	if err := m.eraMerge(src, dst); err != nil {
		logger.Info("era merge failed", "src", src, "dst", dst, "error", err)
		return err
	}

	logger.Info("merged", "src", src, "dst", dst)
	return nil
}

func (m *Manager) eraMerge(src, dst rstake.Address) error {
	l, err := m.load()
	if err != nil {
		return err
	}
	if !l.EraProcessData.IsEmpty() {
		return reverts.ErrEraIsProcessing
	}
	if src == dst {
		return reverts.Newf(reverts.StakeAccountAlreadyExist, "merge %v into itself", src)
	}
	for _, record := range []rstake.Address{src, dst} {
		if !l.StakeAccounts.Contains(record) {
			return reverts.Newf(reverts.StakeAccountNotExist, "%v", record)
		}
	}
	srcDelegation, err := m.activeDelegation(src)
	if err != nil {
		return err
	}
	dstDelegation, err := m.activeDelegation(dst)
	if err != nil {
		return err
	}
	if srcDelegation.Voter != dstDelegation.Voter {
		return reverts.ErrValidatorsNotEqual
	}

	if err := m.delegator.Merge(dst, src, m.pool); err != nil {
		return err
	}

	l.StakeAccounts.Remove(src)
	if err := m.ledgerService.Set(l); err != nil {
		return err
	}
	m.emit(KindEraMerge, l.LatestEra, &EraMergeEvent{SrcStakeAccount: src, DstStakeAccount: dst})
	return nil
}

// EraWithdraw reclaims the whole balance of a deactivated record into the pool.
func (m *Manager) EraWithdraw(record rstake.Address, epoch uint64) error {
	logger.Debug("withdrawing record", "record", record, "epoch", epoch)

	ev, err := m.eraWithdraw(record, epoch)
	if err != nil {
		logger.Info("era withdraw failed", "record", record, "error", err)
		return err
	}

	logger.Info("withdrew record", "record", record, "amount", ev.WithdrawAmount)
	return nil
}

func (m *Manager) eraWithdraw(record rstake.Address, epoch uint64) (*EraWithdrawEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, err
	}
	if !l.SplitAccounts.Contains(record) {
		return nil, reverts.Newf(reverts.StakeAccountNotExist, "%v", record)
	}
	delegation, err := m.delegator.Delegation(record)
	if err != nil {
		return nil, err
	}
	if delegation == nil {
		return nil, reverts.ErrDelegationEmpty
	}
	if delegation.IsActive() {
		return nil, reverts.ErrStakeAccountActive
	}
	amount, err := m.delegator.Balance(record)
	if err != nil {
		return nil, err
	}

	if err := m.delegator.Withdraw(record, m.pool, m.pool, amount, epoch); err != nil {
		return nil, err
	}

	l.SplitAccounts.Remove(record)
	if err := m.ledgerService.Set(l); err != nil {
		return nil, err
	}

	ev := &EraWithdrawEvent{StakeAccount: record, WithdrawAmount: amount}
	m.emit(KindEraWithdraw, l.LatestEra, ev)
	return ev, nil
}

func (m *Manager) activeDelegation(record rstake.Address) (*stakeprog.Delegation, error) {
	delegation, err := m.delegator.Delegation(record)
	if err != nil {
		return nil, err
	}
	if delegation == nil {
		return nil, reverts.ErrDelegationEmpty
	}
	if !delegation.IsActive() {
		return nil, reverts.Newf(reverts.StakeAccountNotActive, "%v", record)
	}
	return delegation, nil
}
