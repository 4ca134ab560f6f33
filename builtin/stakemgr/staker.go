// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemgr

import (
	"github.com/rstake/node/builtin/stakemgr/calc"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/builtin/stakemgr/unstake"
	"github.com/rstake/node/rstake"
)

// Stake deposits amount of base asset from staker into the pool and mints the derivative at the current rate.
func (m *Manager) Stake(staker rstake.Address, amount uint64) error {
	logger.Debug("staking", "staker", staker, "amount", amount)

	ev, err := m.stake(staker, amount)
	if err != nil {
		logger.Info("stake failed", "staker", staker, "error", err)
		return err
	}

	logger.Info("staked", "staker", staker, "amount", amount, "derivative", ev.DerivativeAmount)
	return nil
}

func (m *Manager) stake(staker rstake.Address, amount uint64) (*StakeEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, err
	}
	if l.DerivativeMint != m.minter.Address() {
		return nil, reverts.ErrMintAccountNotMatch
	}
	if amount == 0 || amount < l.MinStakeAmount {
		return nil, reverts.Newf(reverts.StakeAmountTooLow, "%d < %d", amount, l.MinStakeAmount)
	}
	balance, err := m.bank.Balance(staker)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, reverts.Newf(reverts.BalanceNotEnough, "balance %d < %d", balance, amount)
	}

	derivative, err := calc.ToDerivative(amount, l.Rate)
	if err != nil {
		return nil, err
	}
	eraBond, err := calc.SafeAdd(l.EraBond, amount)
	if err != nil {
		return nil, err
	}
	active, err := calc.SafeAdd(l.Active, amount)
	if err != nil {
		return nil, err
	}
	supply, err := calc.SafeAdd(l.TotalDerivativeSupply, derivative)
	if err != nil {
		return nil, err
	}

	if err := m.bank.Transfer(staker, m.pool, amount); err != nil {
		return nil, err
	}
	if err := m.minter.Mint(m.pool, staker, derivative); err != nil {
		return nil, err
	}

	l.EraBond, l.Active, l.TotalDerivativeSupply = eraBond, active, supply
	if err := m.ledgerService.Set(l); err != nil {
		return nil, err
	}

	ev := &StakeEvent{
		Staker:           staker,
		MintTo:           staker,
		StakeAmount:      amount,
		DerivativeAmount: derivative,
	}
	m.emit(KindStake, l.LatestEra, ev)
	return ev, nil
}

// Unstake burns amount of owner's derivative on behalf of authority, which is the owner
// or its delegate, and opens an unstake account claimable after the unbonding duration.
// It returns the id of the unstake account.
func (m *Manager) Unstake(authority, owner rstake.Address, amount, epoch uint64) (rstake.Address, error) {
	logger.Debug("unstaking", "authority", authority, "owner", owner, "amount", amount, "epoch", epoch)

	ev, err := m.unstake(authority, owner, amount, epoch)
	if err != nil {
		logger.Info("unstake failed", "owner", owner, "error", err)
		return rstake.Address{}, err
	}

	logger.Info("unstaked", "owner", owner, "unstakeAccount", ev.UnstakeAccount, "base", ev.BaseAmount, "fee", ev.UnstakeFee)
	return ev.UnstakeAccount, nil
}

func (m *Manager) unstake(authority, owner rstake.Address, amount, epoch uint64) (*UnstakeEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, reverts.ErrUnstakeAmountIsZero
	}
	if l.DerivativeMint != m.minter.Address() {
		return nil, reverts.ErrMintAccountNotMatch
	}

	acc, err := m.minter.Account(owner)
	if err != nil {
		return nil, err
	}
	switch {
	case !acc.Delegate.IsZero() && acc.Delegate == authority:
		if acc.DelegatedAmount < amount {
			return nil, reverts.Newf(reverts.BalanceNotEnough, "delegated %d < %d", acc.DelegatedAmount, amount)
		}
		if acc.Balance < amount {
			return nil, reverts.Newf(reverts.BalanceNotEnough, "balance %d < %d", acc.Balance, amount)
		}
	case authority == owner:
		if acc.Balance < amount {
			return nil, reverts.Newf(reverts.BalanceNotEnough, "balance %d < %d", acc.Balance, amount)
		}
	default:
		return nil, reverts.ErrAuthorityNotMatch
	}

	fee, err := calc.UnstakeFee(amount, l.UnstakeFeeCommission)
	if err != nil {
		return nil, err
	}
	net := amount - fee
	base, err := calc.ToBase(net, l.Rate)
	if err != nil {
		return nil, err
	}
	active, err := calc.SafeSub(l.Active, base)
	if err != nil {
		return nil, err
	}
	eraUnbond, err := calc.SafeAdd(l.EraUnbond, base)
	if err != nil {
		return nil, err
	}
	totalFee, err := calc.SafeAdd(l.TotalProtocolFee, fee)
	if err != nil {
		return nil, err
	}
	supply, err := calc.SafeSub(l.TotalDerivativeSupply, net)
	if err != nil {
		return nil, err
	}

	if fee > 0 {
		if err := m.minter.Transfer(authority, owner, l.FeeRecipient, fee); err != nil {
			return nil, err
		}
	}
	if err := m.minter.Burn(authority, owner, net); err != nil {
		return nil, err
	}
	id, err := m.unstakeService.Create(&unstake.Account{
		StakeManager: m.addr,
		Recipient:    owner,
		Amount:       base,
		CreatedEpoch: epoch,
	})
	if err != nil {
		return nil, err
	}

	l.Active, l.EraUnbond, l.TotalProtocolFee, l.TotalDerivativeSupply = active, eraUnbond, totalFee, supply
	if err := m.ledgerService.Set(l); err != nil {
		return nil, err
	}

	ev := &UnstakeEvent{
		Staker:         owner,
		BurnFrom:       owner,
		UnstakeAccount: id,
		UnstakeAmount:  amount,
		BaseAmount:     base,
		UnstakeFee:     fee,
	}
	m.emit(KindUnstake, l.LatestEra, ev)
	return ev, nil
}

// Withdraw pays a claimable unstake account out of the pool to its recipient and closes it.
func (m *Manager) Withdraw(id rstake.Address, epoch uint64) error {
	logger.Debug("withdrawing", "unstakeAccount", id, "epoch", epoch)

	ev, err := m.withdraw(id, epoch)
	if err != nil {
		logger.Info("withdraw failed", "unstakeAccount", id, "error", err)
		return err
	}

	logger.Info("withdrew", "unstakeAccount", id, "recipient", ev.Staker, "amount", ev.WithdrawAmount)
	return nil
}

func (m *Manager) withdraw(id rstake.Address, epoch uint64) (*WithdrawEvent, error) {
	l, err := m.load()
	if err != nil {
		return nil, err
	}
	acc, err := m.unstakeService.Get(id)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.StakeManager != m.addr {
		return nil, reverts.Newf(reverts.InvalidUnstakeAccount, "%v", id)
	}
	if acc.Amount == 0 {
		return nil, reverts.ErrUnstakeAccountAmountZero
	}
	claimable, err := calc.SafeAdd(acc.CreatedEpoch, l.UnbondingDuration)
	if err != nil {
		return nil, err
	}
	if epoch < claimable {
		return nil, reverts.Newf(reverts.UnstakeAccountNotClaimable, "claimable at epoch %d", claimable)
	}
	available, err := m.availableInPool(l)
	if err != nil {
		return nil, err
	}
	if acc.Amount > available {
		return nil, reverts.Newf(reverts.PoolBalanceNotEnough, "available %d < %d", available, acc.Amount)
	}

	if err := m.bank.Transfer(m.pool, acc.Recipient, acc.Amount); err != nil {
		return nil, err
	}
	m.unstakeService.Close(id)

	ev := &WithdrawEvent{
		Staker:         acc.Recipient,
		UnstakeAccount: id,
		WithdrawAmount: acc.Amount,
	}
	m.emit(KindWithdraw, l.LatestEra, ev)
	return ev, nil
}
