// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/rstake/node/lvldb"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	b := New(state.New(db))
	alice := rstake.BytesToAddress([]byte("alice"))
	bob := rstake.BytesToAddress([]byte("bob"))

	require.NoError(t, b.Mint(alice, 100))

	require.NoError(t, b.Transfer(alice, bob, 40))
	bal, _ := b.Balance(alice)
	assert.Equal(t, uint64(60), bal)
	bal, _ = b.Balance(bob)
	assert.Equal(t, uint64(40), bal)

	err = b.Transfer(bob, alice, 41)
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	bal, _ = b.Balance(bob)
	assert.Equal(t, uint64(40), bal)

	// zero and self transfers are no-ops
	assert.NoError(t, b.Transfer(bob, alice, 0))
	assert.NoError(t, b.Transfer(bob, bob, 1000))
}
