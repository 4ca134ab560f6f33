// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemgr

import "github.com/rstake/node/rstake"

// Kind names the operation that emitted an event.
type Kind string

const (
	KindInitialize      Kind = "initialize"
	KindAdmin           Kind = "admin"
	KindStake           Kind = "stake"
	KindUnstake         Kind = "unstake"
	KindWithdraw        Kind = "withdraw"
	KindEraNew          Kind = "era_new"
	KindEraBond         Kind = "era_bond"
	KindEraUnbond       Kind = "era_unbond"
	KindEraUpdateActive Kind = "era_update_active"
	KindEraUpdateRate   Kind = "era_update_rate"
	KindEraMerge        Kind = "era_merge"
	KindEraWithdraw     Kind = "era_withdraw"
	KindRedelegate      Kind = "redelegate"
)

// Kinds lists every event kind.
var Kinds = []Kind{
	KindInitialize, KindAdmin,
	KindStake, KindUnstake, KindWithdraw,
	KindEraNew, KindEraBond, KindEraUnbond, KindEraUpdateActive, KindEraUpdateRate, KindEraMerge, KindEraWithdraw,
	KindRedelegate,
}

// Event is emitted by a successful operation. Era is the latest era of the ledger after it.
type Event struct {
	Kind    Kind
	Era     uint64
	Payload any
}

type InitializeEvent struct {
	Admin          rstake.Address `json:"admin"`
	FeeRecipient   rstake.Address `json:"feeRecipient"`
	DerivativeMint rstake.Address `json:"derivativeMint"`
	Validator      rstake.Address `json:"validator"`
	Rate           uint64         `json:"rate"`
}

// AdminEvent records a change made by the admin. Only the fields the operation sets are present.
type AdminEvent struct {
	Op      string          `json:"op"`
	Address *rstake.Address `json:"address,omitempty"`
	Values  []uint64        `json:"values,omitempty"`
}

type StakeEvent struct {
	Staker           rstake.Address `json:"staker"`
	MintTo           rstake.Address `json:"mintTo"`
	StakeAmount      uint64         `json:"stakeAmount"`
	DerivativeAmount uint64         `json:"derivativeAmount"`
}

type UnstakeEvent struct {
	Staker         rstake.Address `json:"staker"`
	BurnFrom       rstake.Address `json:"burnFrom"`
	UnstakeAccount rstake.Address `json:"unstakeAccount"`
	UnstakeAmount  uint64         `json:"unstakeAmount"`
	BaseAmount     uint64         `json:"baseAmount"`
	UnstakeFee     uint64         `json:"unstakeFee"`
}

type WithdrawEvent struct {
	Staker         rstake.Address `json:"staker"`
	UnstakeAccount rstake.Address `json:"unstakeAccount"`
	WithdrawAmount uint64         `json:"withdrawAmount"`
}

type EraNewEvent struct {
	NeedBond   uint64 `json:"needBond"`
	NeedUnbond uint64 `json:"needUnbond"`
	Active     uint64 `json:"active"`
}

type EraBondEvent struct {
	StakeAccount rstake.Address `json:"stakeAccount"`
	BondAmount   uint64         `json:"bondAmount"`
}

type EraUnbondEvent struct {
	FromStakeAccount rstake.Address `json:"fromStakeAccount"`
	SplitAccount     rstake.Address `json:"splitAccount"`
	UnbondAmount     uint64         `json:"unbondAmount"`
}

type EraUpdateActiveEvent struct {
	StakeAccount rstake.Address `json:"stakeAccount"`
	StakeAmount  uint64         `json:"stakeAmount"`
}

type EraUpdateRateEvent struct {
	Rate uint64 `json:"rate"`
	Fee  uint64 `json:"fee"`
}

type EraMergeEvent struct {
	SrcStakeAccount rstake.Address `json:"srcStakeAccount"`
	DstStakeAccount rstake.Address `json:"dstStakeAccount"`
}

type EraWithdrawEvent struct {
	StakeAccount   rstake.Address `json:"stakeAccount"`
	WithdrawAmount uint64         `json:"withdrawAmount"`
}

type RedelegateEvent struct {
	FromStakeAccount rstake.Address `json:"fromStakeAccount"`
	ToStakeAccount   rstake.Address `json:"toStakeAccount"`
	RedelegateAmount uint64         `json:"redelegateAmount"`
}
