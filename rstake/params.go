// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rstake

import "math"

// CalBase is the fixed-point scale of rates and commissions.
const CalBase uint64 = 1_000_000_000

// MaxEpoch marks a delegation that has not been deactivated.
const MaxEpoch uint64 = math.MaxUint64

// PoolRentExempt is the reserve the pool custody keeps and must hold exactly at initialization.
const PoolRentExempt uint64 = 890_880

// Ledger defaults applied at initialization.
const (
	DefaultUnbondingDuration     uint64 = 2
	DefaultMinStakeAmount        uint64 = 1_000_000
	DefaultUnstakeFeeCommission  uint64 = 0
	DefaultProtocolFeeCommission uint64 = 100_000_000
	DefaultRateChangeLimit       uint64 = 500_000
	DefaultStakeAccountsLenLimit uint64 = 100
	DefaultSplitAccountsLenLimit uint64 = 20
)

// well-known addresses of the builtin programs
var (
	BankAddress           = BytesToAddress([]byte("Bank"))
	MinterAddress         = BytesToAddress([]byte("Minter"))
	StakeProgramAddress   = BytesToAddress([]byte("StakeProgram"))
	UnstakeAccountAddress = BytesToAddress([]byte("UnstakeAccount"))
)
