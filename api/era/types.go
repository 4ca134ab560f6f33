// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package era

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/rstake/node/rstake"
)

// BondRequest delegates the era's bond amount to Validator through the new StakeAccount.
// Payer funds the record reserve.
type BondRequest struct {
	Validator    rstake.Address `json:"validator"`
	StakeAccount rstake.Address `json:"stakeAccount"`
	Payer        rstake.Address `json:"payer"`
}

type UnbondRequest struct {
	Validator    rstake.Address `json:"validator"`
	StakeAccount rstake.Address `json:"stakeAccount"`
	SplitAccount rstake.Address `json:"splitAccount"`
	Payer        rstake.Address `json:"payer"`
}

type UpdateActiveRequest struct {
	StakeAccount rstake.Address `json:"stakeAccount"`
}

type MergeRequest struct {
	SrcStakeAccount rstake.Address `json:"srcStakeAccount"`
	DstStakeAccount rstake.Address `json:"dstStakeAccount"`
}

type WithdrawRequest struct {
	StakeAccount rstake.Address `json:"stakeAccount"`
}

type RedelegateRequest struct {
	Caller            rstake.Address      `json:"caller"`
	Amount            math.HexOrDecimal64 `json:"amount"`
	ToValidator       rstake.Address      `json:"toValidator"`
	FromStakeAccount  rstake.Address      `json:"fromStakeAccount"`
	SplitStakeAccount rstake.Address      `json:"splitStakeAccount"`
	ToStakeAccount    rstake.Address      `json:"toStakeAccount"`
	Payer             rstake.Address      `json:"payer"`
}

// TickRequest advances the manual clock. Epochs defaults to 1.
type TickRequest struct {
	Epochs *math.HexOrDecimal64 `json:"epochs"`
}

type TickResponse struct {
	Epoch uint64 `json:"epoch"`
}
