// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/rstake/node/builtin/stakemgr/ledger/addrset"
	"github.com/rstake/node/rstake"
)

// Ledger is the single mutable record of a pool.
type Ledger struct {
	Admin          rstake.Address
	Balancer       rstake.Address
	DerivativeMint rstake.Address
	FeeRecipient   rstake.Address

	RentExemptForPool     uint64
	MinStakeAmount        uint64
	UnstakeFeeCommission  uint64
	ProtocolFeeCommission uint64
	RateChangeLimit       uint64
	StakeAccountsLenLimit uint64
	SplitAccountsLenLimit uint64
	UnbondingDuration     uint64

	LatestEra             uint64
	Rate                  uint64
	EraBond               uint64
	EraUnbond             uint64
	Active                uint64
	TotalDerivativeSupply uint64
	TotalProtocolFee      uint64

	Validators    addrset.Set
	StakeAccounts addrset.Set
	SplitAccounts addrset.Set

	EraProcessData EraProcessData
}

// EraProcessData is the work order of the era being processed.
type EraProcessData struct {
	NeedBond             uint64
	NeedUnbond           uint64
	OldActive            uint64
	NewActive            uint64
	PendingStakeAccounts addrset.Set
}

// IsEmpty returns whether the work order is fully consumed.
// The next era can only open on an empty work order.
func (e *EraProcessData) IsEmpty() bool {
	return e.NeedBond == 0 &&
		e.NeedUnbond == 0 &&
		e.OldActive == 0 &&
		e.NewActive == 0 &&
		e.PendingStakeAccounts.IsEmpty()
}

func (e *EraProcessData) NeedBondStep() bool {
	return e.NeedBond > 0
}

func (e *EraProcessData) NeedUnbondStep() bool {
	return e.NeedUnbond > 0
}

// NeedUpdateActive returns whether records remain to be observed once bonding is done.
// Outstanding unbond work does not block observation.
func (e *EraProcessData) NeedUpdateActive() bool {
	return e.NeedBond == 0 && !e.PendingStakeAccounts.IsEmpty()
}

// NeedUpdateRate returns whether the era is ready for rate settlement.
func (e *EraProcessData) NeedUpdateRate() bool {
	return e.NeedBond == 0 &&
		e.NeedUnbond == 0 &&
		e.PendingStakeAccounts.IsEmpty() &&
		e.OldActive != 0 &&
		e.NewActive != 0
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	cpy := *l
	cpy.Validators = l.Validators.Clone()
	cpy.StakeAccounts = l.StakeAccounts.Clone()
	cpy.SplitAccounts = l.SplitAccounts.Clone()
	cpy.EraProcessData.PendingStakeAccounts = l.EraProcessData.PendingStakeAccounts.Clone()
	return &cpy
}

// IsInitialized returns whether the ledger has been initialized.
func (l *Ledger) IsInitialized() bool {
	return l != nil && !l.Admin.IsZero()
}
