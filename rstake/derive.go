// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rstake

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
)

// PoolSeed is the seed component of the pool custody address.
var PoolSeed = []byte("pool_seed")

// DeriveAddress returns the deterministic sub-address of the given seed components.
// It holds no state; it only proves custody to the primitives that check it.
func DeriveAddress(seeds ...[]byte) Address {
	data, _ := rlp.EncodeToBytes(seeds)
	return BytesToAddress(Keccak256(data).Bytes()[12:])
}

// PoolAddress returns the custody address owned by the given stake manager.
func PoolAddress(manager Address) Address {
	return DeriveAddress(manager.Bytes(), PoolSeed)
}

// Uint64Seed encodes n as a big-endian seed component.
func Uint64Seed(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}
