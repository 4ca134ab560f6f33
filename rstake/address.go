// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rstake

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// AddressLength length of address in bytes.
const AddressLength = common.AddressLength

// Address identifies an account, a record or a pool.
type Address common.Address

// String returns the lower case 0x hex form, without checksum.
func (a Address) String() string {
	return hexutil.Encode(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Compare orders addresses by their byte form.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// MarshalText implements encoding.TextMarshaler. It serves json, yaml and map keys.
func (a Address) MarshalText() ([]byte, error) {
	return hexutil.Bytes(a[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler. The 0x prefix is optional.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

// ParseAddress decodes hex with or without the 0x prefix.
func ParseAddress(s string) (*Address, error) {
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	var addr Address
	if err := hexutil.UnmarshalFixedText("Address", []byte(s), addr[:]); err != nil {
		return nil, errors.Wrap(err, "parse address")
	}
	return &addr, nil
}

// MustParseAddress is ParseAddress that panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return *addr
}

// BytesToAddress left pads or left crops b to the address length.
func BytesToAddress(b []byte) Address {
	return Address(common.BytesToAddress(b))
}
