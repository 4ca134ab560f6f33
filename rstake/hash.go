// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rstake

import (
	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b hashes the concatenation of data with blake2b-256.
// Storage slots and genesis ids use it.
func Blake2b(data ...[]byte) (h Bytes32) {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	w, _ := blake2b.New256(nil)
	for _, b := range data {
		w.Write(b)
	}
	w.Sum(h[:0])
	return
}

// Keccak256 hashes the concatenation of data with legacy keccak-256.
// Derived addresses use it.
func Keccak256(data ...[]byte) (h Bytes32) {
	w := sha3.NewLegacyKeccak256()
	for _, b := range data {
		w.Write(b)
	}
	w.Sum(h[:0])
	return
}
