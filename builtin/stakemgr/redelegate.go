// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemgr

import (
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/rstake"
)

// Redelegate moves amount of the stake held by record from to the new record to, delegated to
// toValidator. A partial move goes through the new record split. The record the stake left is
// deactivated and tracked until EraWithdraw reclaims its reserve. payer funds the reserves of
// split and to, and is refunded for split when the whole record moves.
func (m *Manager) Redelegate(
	caller rstake.Address,
	amount uint64,
	toValidator, from, split, to, payer rstake.Address,
	epoch uint64,
) error {
	logger.Debug("redelegating", "from", from, "to", to, "validator", toValidator, "amount", amount)

	if err := m.redelegate(caller, amount, toValidator, from, split, to, payer, epoch); err != nil {
		logger.Info("redelegate failed", "from", from, "error", err)
		return err
	}

	logger.Info("redelegated", "from", from, "to", to, "amount", amount)
	return nil
}

func (m *Manager) redelegate(
	caller rstake.Address,
	amount uint64,
	toValidator, from, split, to, payer rstake.Address,
	epoch uint64,
) error {
	l, err := m.load()
	if err != nil {
		return err
	}
	if caller != l.Balancer {
		return reverts.ErrBalancerNotMatch
	}
	if amount == 0 {
		return reverts.Newf(reverts.AmountUnmatch, "zero amount")
	}
	if !l.EraProcessData.IsEmpty() {
		return reverts.ErrEraIsProcessing
	}
	if !l.StakeAccounts.Contains(from) {
		return reverts.Newf(reverts.StakeAccountNotExist, "%v", from)
	}
	if l.StakeAccounts.Contains(to) {
		return reverts.Newf(reverts.StakeAccountAlreadyExist, "%v", to)
	}
	if l.SplitAccounts.Contains(split) || split == to {
		return reverts.Newf(reverts.SplitStakeAccountAlreadyExist, "%v", split)
	}
	if !l.Validators.Contains(toValidator) {
		return reverts.Newf(reverts.ValidatorNotExist, "%v", toValidator)
	}
	if uint64(l.SplitAccounts.Len()) >= l.SplitAccountsLenLimit {
		return reverts.ErrStakeAccountsLenOverLimit
	}
	delegation, err := m.activeDelegation(from)
	if err != nil {
		return err
	}
	if delegation.Voter == toValidator {
		return reverts.Newf(reverts.ValidatorNotMatch, "already delegated to %v", toValidator)
	}
	if delegation.Stake < amount {
		return reverts.Newf(reverts.AmountUnmatch, "stake %d < %d", delegation.Stake, amount)
	}
	// a whole move swaps from for to, only a partial move grows the stake set
	if amount < delegation.Stake && uint64(l.StakeAccounts.Len()) >= l.StakeAccountsLenLimit {
		return reverts.ErrStakeAccountsLenOverLimit
	}
	if err := m.checkRent(payer, 2); err != nil {
		return err
	}

	if err := m.delegator.Create(payer, split, m.pool); err != nil {
		return err
	}
	if err := m.delegator.Create(payer, to, m.pool); err != nil {
		return err
	}

	moved := from
	if amount < delegation.Stake {
		if err := m.delegator.Split(from, m.pool, amount, split); err != nil {
			return err
		}
		moved = split
	} else {
		// whole record moves, refund the split reserve
		reserve, err := m.delegator.Balance(split)
		if err != nil {
			return err
		}
		if err := m.delegator.Withdraw(split, m.pool, payer, reserve, epoch); err != nil {
			return err
		}
		l.StakeAccounts.Remove(from)
	}
	if err := m.delegator.Redelegate(moved, m.pool, toValidator, to, epoch); err != nil {
		return err
	}

	l.SplitAccounts.Add(moved)
	l.StakeAccounts.Add(to)
	if err := m.ledgerService.Set(l); err != nil {
		return err
	}

	m.emit(KindRedelegate, l.LatestEra, &RedelegateEvent{
		FromStakeAccount: from,
		ToStakeAccount:   to,
		RedelegateAmount: amount,
	})
	return nil
}
