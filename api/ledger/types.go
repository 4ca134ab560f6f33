// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/rstake/node/builtin/stakemgr/ledger"
	"github.com/rstake/node/rstake"
)

// Era steps reported by the work order.
const (
	StepNew          = "new"
	StepBond         = "bond"
	StepUnbond       = "unbond"
	StepUpdateActive = "update_active"
	StepUpdateRate   = "update_rate"
)

// Params are the admin controlled settings of a pool.
type Params struct {
	RentExemptForPool     uint64 `json:"rentExemptForPool"`
	MinStakeAmount        uint64 `json:"minStakeAmount"`
	UnstakeFeeCommission  uint64 `json:"unstakeFeeCommission"`
	ProtocolFeeCommission uint64 `json:"protocolFeeCommission"`
	RateChangeLimit       uint64 `json:"rateChangeLimit"`
	StakeAccountsLenLimit uint64 `json:"stakeAccountsLenLimit"`
	SplitAccountsLenLimit uint64 `json:"splitAccountsLenLimit"`
	UnbondingDuration     uint64 `json:"unbondingDuration"`
}

// WorkOrder is the era being processed and the steps that may run next.
type WorkOrder struct {
	LatestEra            uint64           `json:"latestEra"`
	NeedBond             uint64           `json:"needBond"`
	NeedUnbond           uint64           `json:"needUnbond"`
	OldActive            uint64           `json:"oldActive"`
	NewActive            uint64           `json:"newActive"`
	PendingStakeAccounts []rstake.Address `json:"pendingStakeAccounts"`
	Steps                []string         `json:"steps"`
}

// Ledger is the json form of a pool ledger.
type Ledger struct {
	Manager        rstake.Address `json:"manager"`
	Pool           rstake.Address `json:"pool"`
	PoolBalance    uint64         `json:"poolBalance"`
	Admin          rstake.Address `json:"admin"`
	Balancer       rstake.Address `json:"balancer"`
	DerivativeMint rstake.Address `json:"derivativeMint"`
	FeeRecipient   rstake.Address `json:"feeRecipient"`
	Params         Params         `json:"params"`

	LatestEra             uint64 `json:"latestEra"`
	Rate                  uint64 `json:"rate"`
	EraBond               uint64 `json:"eraBond"`
	EraUnbond             uint64 `json:"eraUnbond"`
	Active                uint64 `json:"active"`
	TotalDerivativeSupply uint64 `json:"totalDerivativeSupply"`
	TotalProtocolFee      uint64 `json:"totalProtocolFee"`

	Validators    []rstake.Address `json:"validators"`
	StakeAccounts []rstake.Address `json:"stakeAccounts"`
	SplitAccounts []rstake.Address `json:"splitAccounts"`
	WorkOrder     *WorkOrder       `json:"workOrder"`
}

func newWorkOrder(l *ledger.Ledger) *WorkOrder {
	e := &l.EraProcessData
	wo := &WorkOrder{
		LatestEra:            l.LatestEra,
		NeedBond:             e.NeedBond,
		NeedUnbond:           e.NeedUnbond,
		OldActive:            e.OldActive,
		NewActive:            e.NewActive,
		PendingStakeAccounts: e.PendingStakeAccounts.List(),
		Steps:                []string{},
	}
	if e.IsEmpty() {
		wo.Steps = append(wo.Steps, StepNew)
	}
	if e.NeedBondStep() {
		wo.Steps = append(wo.Steps, StepBond)
	}
	if e.NeedUnbondStep() {
		wo.Steps = append(wo.Steps, StepUnbond)
	}
	if e.NeedUpdateActive() {
		wo.Steps = append(wo.Steps, StepUpdateActive)
	}
	if e.NeedUpdateRate() {
		wo.Steps = append(wo.Steps, StepUpdateRate)
	}
	return wo
}

func newLedger(manager, pool rstake.Address, poolBalance uint64, l *ledger.Ledger) *Ledger {
	return &Ledger{
		Manager:        manager,
		Pool:           pool,
		PoolBalance:    poolBalance,
		Admin:          l.Admin,
		Balancer:       l.Balancer,
		DerivativeMint: l.DerivativeMint,
		FeeRecipient:   l.FeeRecipient,
		Params: Params{
			RentExemptForPool:     l.RentExemptForPool,
			MinStakeAmount:        l.MinStakeAmount,
			UnstakeFeeCommission:  l.UnstakeFeeCommission,
			ProtocolFeeCommission: l.ProtocolFeeCommission,
			RateChangeLimit:       l.RateChangeLimit,
			StakeAccountsLenLimit: l.StakeAccountsLenLimit,
			SplitAccountsLenLimit: l.SplitAccountsLenLimit,
			UnbondingDuration:     l.UnbondingDuration,
		},
		LatestEra:             l.LatestEra,
		Rate:                  l.Rate,
		EraBond:               l.EraBond,
		EraUnbond:             l.EraUnbond,
		Active:                l.Active,
		TotalDerivativeSupply: l.TotalDerivativeSupply,
		TotalProtocolFee:      l.TotalProtocolFee,
		Validators:            l.Validators.List(),
		StakeAccounts:         l.StakeAccounts.List(),
		SplitAccounts:         l.SplitAccounts.List(),
		WorkOrder:             newWorkOrder(l),
	}
}

// InitializeRequest creates the ledger. DerivativeMint defaults to the builtin minter.
type InitializeRequest struct {
	Caller                rstake.Address      `json:"caller"`
	DerivativeMint        *rstake.Address     `json:"derivativeMint"`
	FeeRecipient          rstake.Address      `json:"feeRecipient"`
	Validator             rstake.Address      `json:"validator"`
	Bond                  math.HexOrDecimal64 `json:"bond"`
	Unbond                math.HexOrDecimal64 `json:"unbond"`
	Active                math.HexOrDecimal64 `json:"active"`
	LatestEra             math.HexOrDecimal64 `json:"latestEra"`
	Rate                  math.HexOrDecimal64 `json:"rate"`
	TotalDerivativeSupply math.HexOrDecimal64 `json:"totalDerivativeSupply"`
	TotalProtocolFee      math.HexOrDecimal64 `json:"totalProtocolFee"`
}

// AdminRequest carries the argument of an admin operation. Which fields are read depends on the operation.
type AdminRequest struct {
	Caller     rstake.Address       `json:"caller"`
	Address    *rstake.Address      `json:"address"`
	Value      *math.HexOrDecimal64 `json:"value"`
	StakeLimit *math.HexOrDecimal64 `json:"stakeLimit"`
	SplitLimit *math.HexOrDecimal64 `json:"splitLimit"`
}
