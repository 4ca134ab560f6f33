// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package calc implements the fixed-point accounting of the stake manager.
// Amounts are uint64, products are computed in 256 bits and narrowed back
// with an explicit overflow check.
package calc

import (
	"github.com/holiman/uint256"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/rstake"
)

// mulDiv returns a*b/c, failing on division by zero or if the result exceeds uint64.
func mulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, reverts.Newf(reverts.CalculationFail, "division by zero")
	}
	x := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	x.Div(x, uint256.NewInt(c))
	if !x.IsUint64() {
		return 0, reverts.Newf(reverts.CalculationFail, "%d * %d / %d overflows", a, b, c)
	}
	return x.Uint64(), nil
}

// ToDerivative converts a base asset amount into derivative units at rate.
func ToDerivative(amount, rate uint64) (uint64, error) {
	return mulDiv(amount, rstake.CalBase, rate)
}

// ToBase converts derivative units into the base asset amount at rate.
func ToBase(derivative, rate uint64) (uint64, error) {
	return mulDiv(derivative, rate, rstake.CalBase)
}

// UnstakeFee returns the derivative fee charged on an unstake of amount.
func UnstakeFee(amount, commission uint64) (uint64, error) {
	return mulDiv(amount, commission, rstake.CalBase)
}

// ProtocolFee returns the derivative units minted to the fee recipient for reward.
func ProtocolFee(reward, commission, rate uint64) (uint64, error) {
	return mulDiv(reward, commission, rate)
}

// NewRate returns the rate backing supply derivative units with active base asset.
func NewRate(active, supply uint64) (uint64, error) {
	if active == 0 || supply == 0 {
		return rstake.CalBase, nil
	}
	return mulDiv(active, rstake.CalBase, supply)
}

// RateChange returns the fractional move from oldRate to newRate, scaled by CalBase.
func RateChange(oldRate, newRate uint64) (uint64, error) {
	if oldRate == 0 {
		return 0, nil
	}
	diff := newRate - oldRate
	if oldRate > newRate {
		diff = oldRate - newRate
	}
	return mulDiv(diff, rstake.CalBase, oldRate)
}

// SafeAdd returns a+b, failing on overflow.
func SafeAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, reverts.Newf(reverts.CalculationFail, "%d + %d overflows", a, b)
	}
	return sum, nil
}

// SafeSub returns a-b, failing on underflow.
func SafeSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, reverts.Newf(reverts.CalculationFail, "%d - %d underflows", a, b)
	}
	return a - b, nil
}

// SaturatingSub returns a-b, or zero if b exceeds a.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
