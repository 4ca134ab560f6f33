// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"sync/atomic"

	"github.com/rstake/node/rstake"
)

// DevAccountBalance is the base asset each dev account starts with.
const DevAccountBalance uint64 = 1_000_000_000_000

var devAccounts atomic.Value

// DevAccounts returns pre-funded accounts for solo mode.
func DevAccounts() []rstake.Address {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]rstake.Address)
	}

	var accs []rstake.Address
	for i := range 10 {
		accs = append(accs, rstake.DeriveAddress([]byte("dev"), []byte(fmt.Sprint(i))))
	}
	devAccounts.Store(accs)
	return accs
}

// DevValidators returns the validators known to the solo pool.
func DevValidators() []rstake.Address {
	return []rstake.Address{
		rstake.DeriveAddress([]byte("dev-validator"), []byte("0")),
		rstake.DeriveAddress([]byte("dev-validator"), []byte("1")),
		rstake.DeriveAddress([]byte("dev-validator"), []byte("2")),
	}
}

// NewDevnet creates the genesis of solo mode. The first dev account is the admin.
func NewDevnet() *Genesis {
	accs := DevAccounts()
	gen := &Genesis{
		Manager:      rstake.DeriveAddress([]byte("dev-manager")),
		Admin:        accs[0],
		FeeRecipient: accs[1],
		Validators:   DevValidators(),
	}
	for _, acc := range accs {
		gen.Accounts = append(gen.Accounts, Account{Address: acc, Balance: DevAccountBalance})
	}
	return gen
}
