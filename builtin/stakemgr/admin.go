// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemgr

import (
	"github.com/rstake/node/builtin/stakemgr/calc"
	"github.com/rstake/node/builtin/stakemgr/ledger"
	"github.com/rstake/node/builtin/stakemgr/ledger/addrset"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/rstake"
)

// InitializeData is the starting point of a ledger, which may carry over the totals of an existing pool.
type InitializeData struct {
	DerivativeMint        rstake.Address
	FeeRecipient          rstake.Address
	Validator             rstake.Address
	Bond                  uint64
	Unbond                uint64
	Active                uint64
	LatestEra             uint64
	Rate                  uint64
	TotalDerivativeSupply uint64
	TotalProtocolFee      uint64
}

// Initialize creates the ledger with admin as both admin and balancer. The pool
// custody must hold exactly its rent reserve.
func (m *Manager) Initialize(admin rstake.Address, data *InitializeData) error {
	logger.Debug("initializing", "admin", admin, "validator", data.Validator, "rate", data.Rate)

	if err := m.initialize(admin, data); err != nil {
		logger.Info("initialize failed", "error", err)
		return err
	}

	logger.Info("initialized", "manager", m.addr, "pool", m.pool)
	return nil
}

func (m *Manager) initialize(admin rstake.Address, data *InitializeData) error {
	current, err := m.ledgerService.Get()
	if err != nil {
		return err
	}
	if current.IsInitialized() {
		return ErrAlreadyInitialized
	}
	if m.addr == m.pool {
		return reverts.ErrProgramIdNotMatch
	}
	if data.DerivativeMint != m.minter.Address() {
		return reverts.Newf(reverts.MintAccountNotMatch, "%v", data.DerivativeMint)
	}
	balance, err := m.bank.Balance(m.pool)
	if err != nil {
		return err
	}
	if balance != rstake.PoolRentExempt {
		return reverts.Newf(reverts.RentNotEnough, "pool holds %d, want %d", balance, rstake.PoolRentExempt)
	}
	rate, err := calc.NewRate(data.Active, data.TotalDerivativeSupply)
	if err != nil {
		return err
	}
	if data.Rate != rate {
		return reverts.Newf(reverts.InitializeDataMatch, "rate %d, want %d", data.Rate, rate)
	}

	l := &ledger.Ledger{
		Admin:          admin,
		Balancer:       admin,
		DerivativeMint: data.DerivativeMint,
		FeeRecipient:   data.FeeRecipient,

		RentExemptForPool:     rstake.PoolRentExempt,
		MinStakeAmount:        rstake.DefaultMinStakeAmount,
		UnstakeFeeCommission:  rstake.DefaultUnstakeFeeCommission,
		ProtocolFeeCommission: rstake.DefaultProtocolFeeCommission,
		RateChangeLimit:       rstake.DefaultRateChangeLimit,
		StakeAccountsLenLimit: rstake.DefaultStakeAccountsLenLimit,
		SplitAccountsLenLimit: rstake.DefaultSplitAccountsLenLimit,
		UnbondingDuration:     rstake.DefaultUnbondingDuration,

		LatestEra:             data.LatestEra,
		Rate:                  data.Rate,
		EraBond:               data.Bond,
		EraUnbond:             data.Unbond,
		Active:                data.Active,
		TotalDerivativeSupply: data.TotalDerivativeSupply,
		TotalProtocolFee:      data.TotalProtocolFee,

		Validators: addrset.New(data.Validator),
	}
	if err := m.ledgerService.Set(l); err != nil {
		return err
	}

	m.emit(KindInitialize, l.LatestEra, &InitializeEvent{
		Admin:          admin,
		FeeRecipient:   data.FeeRecipient,
		DerivativeMint: data.DerivativeMint,
		Validator:      data.Validator,
		Rate:           data.Rate,
	})
	return nil
}

// admin runs a change of the ledger on behalf of the admin.
func (m *Manager) admin(caller rstake.Address, ev *AdminEvent, change func(l *ledger.Ledger) error) error {
	logger.Debug("admin change", "op", ev.Op, "caller", caller)

	l, err := m.load()
	if err != nil {
		return err
	}
	if caller != l.Admin {
		logger.Info("admin change failed", "op", ev.Op, "caller", caller, "error", reverts.ErrAdminNotMatch)
		return reverts.ErrAdminNotMatch
	}
	if err := change(l); err != nil {
		logger.Info("admin change failed", "op", ev.Op, "error", err)
		return err
	}
	if err := m.ledgerService.Set(l); err != nil {
		return err
	}

	m.emit(KindAdmin, l.LatestEra, ev)
	logger.Info("admin changed", "op", ev.Op, "address", ev.Address, "values", ev.Values)
	return nil
}

func addressEvent(op string, addr rstake.Address) *AdminEvent {
	return &AdminEvent{Op: op, Address: &addr}
}

func valuesEvent(op string, values ...uint64) *AdminEvent {
	return &AdminEvent{Op: op, Values: values}
}

func (m *Manager) TransferAdmin(caller, newAdmin rstake.Address) error {
	return m.admin(caller, addressEvent("transfer_admin", newAdmin), func(l *ledger.Ledger) error {
		l.Admin = newAdmin
		return nil
	})
}

func (m *Manager) SetBalancer(caller, balancer rstake.Address) error {
	return m.admin(caller, addressEvent("set_balancer", balancer), func(l *ledger.Ledger) error {
		l.Balancer = balancer
		return nil
	})
}

func (m *Manager) SetMinStakeAmount(caller rstake.Address, amount uint64) error {
	return m.admin(caller, valuesEvent("set_min_stake_amount", amount), func(l *ledger.Ledger) error {
		l.MinStakeAmount = amount
		return nil
	})
}

func (m *Manager) SetUnbondingDuration(caller rstake.Address, duration uint64) error {
	return m.admin(caller, valuesEvent("set_unbonding_duration", duration), func(l *ledger.Ledger) error {
		l.UnbondingDuration = duration
		return nil
	})
}

func (m *Manager) SetUnstakeFeeCommission(caller rstake.Address, commission uint64) error {
	return m.admin(caller, valuesEvent("set_unstake_fee_commission", commission), func(l *ledger.Ledger) error {
		l.UnstakeFeeCommission = commission
		return nil
	})
}

func (m *Manager) SetProtocolFeeCommission(caller rstake.Address, commission uint64) error {
	return m.admin(caller, valuesEvent("set_protocol_fee_commission", commission), func(l *ledger.Ledger) error {
		l.ProtocolFeeCommission = commission
		return nil
	})
}

func (m *Manager) SetRateChangeLimit(caller rstake.Address, limit uint64) error {
	return m.admin(caller, valuesEvent("set_rate_change_limit", limit), func(l *ledger.Ledger) error {
		l.RateChangeLimit = limit
		return nil
	})
}

func (m *Manager) SetAccountsLenLimit(caller rstake.Address, stakeLimit, splitLimit uint64) error {
	return m.admin(caller, valuesEvent("set_accounts_len_limit", stakeLimit, splitLimit), func(l *ledger.Ledger) error {
		l.StakeAccountsLenLimit = stakeLimit
		l.SplitAccountsLenLimit = splitLimit
		return nil
	})
}

func (m *Manager) AddValidator(caller, validator rstake.Address) error {
	return m.admin(caller, addressEvent("add_validator", validator), func(l *ledger.Ledger) error {
		if !l.Validators.Add(validator) {
			return reverts.Newf(reverts.ValidatorAlreadyExist, "%v", validator)
		}
		return nil
	})
}

func (m *Manager) RemoveValidator(caller, validator rstake.Address) error {
	return m.admin(caller, addressEvent("remove_validator", validator), func(l *ledger.Ledger) error {
		if !l.Validators.Remove(validator) {
			return reverts.Newf(reverts.ValidatorNotExist, "%v", validator)
		}
		return nil
	})
}
