// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rstake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAddress(t *testing.T) {
	manager := BytesToAddress([]byte("manager"))

	pool := PoolAddress(manager)
	assert.Equal(t, pool, DeriveAddress(manager.Bytes(), PoolSeed))
	assert.NotEqual(t, manager, pool)
	assert.False(t, pool.IsZero())

	other := PoolAddress(BytesToAddress([]byte("another manager")))
	assert.NotEqual(t, pool, other)

	// seed boundaries are part of the derivation
	assert.NotEqual(t, DeriveAddress([]byte("ab"), []byte("c")), DeriveAddress([]byte("a"), []byte("bc")))

	assert.NotEqual(t, DeriveAddress(Uint64Seed(1)), DeriveAddress(Uint64Seed(2)))
}

func TestHashes(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.Equal(t, Keccak256([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256().String())
}
