// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/rstake/node/rstake"
	"github.com/rstake/node/runtime"
)

type StakeRequest struct {
	Staker rstake.Address      `json:"staker"`
	Amount math.HexOrDecimal64 `json:"amount"`
}

// UnstakeRequest burns derivative of Owner on behalf of Caller, who is the owner or its delegate.
// Owner defaults to Caller.
type UnstakeRequest struct {
	Caller rstake.Address      `json:"caller"`
	Owner  *rstake.Address     `json:"owner"`
	Amount math.HexOrDecimal64 `json:"amount"`
}

type UnstakeResponse struct {
	*runtime.Receipt
	UnstakeAccount rstake.Address `json:"unstakeAccount"`
}

type WithdrawRequest struct {
	UnstakeAccount rstake.Address `json:"unstakeAccount"`
}

// ApproveRequest sets Delegate as the spender of up to Amount derivative of Owner. Zero revokes.
type ApproveRequest struct {
	Owner    rstake.Address      `json:"owner"`
	Delegate rstake.Address      `json:"delegate"`
	Amount   math.HexOrDecimal64 `json:"amount"`
}

type UnstakeAccount struct {
	ID             rstake.Address `json:"id"`
	StakeManager   rstake.Address `json:"stakeManager"`
	Recipient      rstake.Address `json:"recipient"`
	Amount         uint64         `json:"amount"`
	CreatedEpoch   uint64         `json:"createdEpoch"`
	ClaimableEpoch uint64         `json:"claimableEpoch"`
	Claimable      bool           `json:"claimable"`
}

type Derivative struct {
	Balance         uint64          `json:"balance"`
	Delegate        *rstake.Address `json:"delegate"`
	DelegatedAmount uint64          `json:"delegatedAmount"`
}

type Account struct {
	Address    rstake.Address `json:"address"`
	Balance    uint64         `json:"balance"`
	Derivative Derivative     `json:"derivative"`
}
