// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package addrset provides an ordered set of addresses.
package addrset

import (
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/btree"
	"github.com/pkg/errors"
	"github.com/rstake/node/rstake"
)

const degree = 8

func less(a, b rstake.Address) bool {
	return a.Compare(b) < 0
}

// Set is an ordered set of addresses. The zero value is an empty set.
// It encodes as the sorted list of its members.
type Set struct {
	tree *btree.BTreeG[rstake.Address]
}

var (
	_ rlp.Encoder      = (*Set)(nil)
	_ rlp.Decoder      = (*Set)(nil)
	_ json.Marshaler   = (*Set)(nil)
	_ json.Unmarshaler = (*Set)(nil)
)

// New returns a set holding addrs.
func New(addrs ...rstake.Address) Set {
	var s Set
	for _, a := range addrs {
		s.Add(a)
	}
	return s
}

func (s *Set) init() {
	if s.tree == nil {
		s.tree = btree.NewG(degree, less)
	}
}

// Len returns the number of members.
func (s *Set) Len() int {
	if s.tree == nil {
		return 0
	}
	return s.tree.Len()
}

// IsEmpty returns whether the set has no member.
func (s *Set) IsEmpty() bool {
	return s.Len() == 0
}

// Contains returns whether addr is a member.
func (s *Set) Contains(addr rstake.Address) bool {
	if s.tree == nil {
		return false
	}
	return s.tree.Has(addr)
}

// Add inserts addr. It returns false if addr was already a member.
func (s *Set) Add(addr rstake.Address) bool {
	s.init()
	_, replaced := s.tree.ReplaceOrInsert(addr)
	return !replaced
}

// Remove deletes addr. It returns false if addr was not a member.
func (s *Set) Remove(addr rstake.Address) bool {
	if s.tree == nil {
		return false
	}
	_, removed := s.tree.Delete(addr)
	return removed
}

// List returns the members in order.
func (s *Set) List() []rstake.Address {
	list := make([]rstake.Address, 0, s.Len())
	if s.tree != nil {
		s.tree.Ascend(func(a rstake.Address) bool {
			list = append(list, a)
			return true
		})
	}
	return list
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() Set {
	if s.tree == nil {
		return Set{}
	}
	return Set{tree: s.tree.Clone()}
}

// EncodeRLP implements rlp.Encoder.
func (s *Set) EncodeRLP(w io.Writer) error {
	if s == nil {
		return rlp.Encode(w, []rstake.Address{})
	}
	return rlp.Encode(w, s.List())
}

// DecodeRLP implements rlp.Decoder.
func (s *Set) DecodeRLP(stream *rlp.Stream) error {
	var list []rstake.Address
	if err := stream.Decode(&list); err != nil {
		return err
	}
	return s.fromList(list)
}

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var list []rstake.Address
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	return s.fromList(list)
}

func (s *Set) fromList(list []rstake.Address) error {
	var decoded Set
	for _, a := range list {
		if !decoded.Add(a) {
			return errors.Errorf("duplicated address %v", a)
		}
	}
	*s = decoded
	return nil
}
