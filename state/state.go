// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rstake/node/kv"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/stackedmap"
)

const (
	accountPrefix = 'a'
	storagePrefix = 's'

	defaultCacheSize = 4096
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type stateKey struct {
	kind byte
	addr rstake.Address
	slot rstake.Bytes32
}

func (k stateKey) dbKey() []byte {
	if k.kind == accountPrefix {
		return append([]byte{accountPrefix}, k.addr[:]...)
	}
	key := make([]byte, 0, 1+rstake.AddressLength+32)
	key = append(key, storagePrefix)
	key = append(key, k.addr[:]...)
	return append(key, k.slot[:]...)
}

// State manages balances and storage over a kv store.
type State struct {
	store kv.Store
	cache *lru.Cache // committed values, keyed by db key
	sm    *stackedmap.StackedMap[stateKey, []byte]
}

// New create a state object over the given store.
func New(store kv.Store) *State {
	cache, _ := lru.New(defaultCacheSize)
	s := &State{
		store: store,
		cache: cache,
	}
	s.sm = stackedmap.New(s.load)
	return s
}

// load reads the committed value of the key.
func (s *State) load(key stateKey) ([]byte, bool, error) {
	dbKey := string(key.dbKey())
	if v, ok := s.cache.Get(dbKey); ok {
		metricCacheCounter().AddWithLabel(1, map[string]string{"event": "hit"})
		return v.([]byte), true, nil
	}
	metricCacheCounter().AddWithLabel(1, map[string]string{"event": "miss"})

	val, err := s.store.Get([]byte(dbKey))
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, false, err
		}
		val = nil
	}
	s.cache.Add(dbKey, val)
	return val, true, nil
}

func (s *State) getAccount(addr rstake.Address) (*Account, error) {
	raw, _, err := s.sm.Get(stateKey{kind: accountPrefix, addr: addr})
	if err != nil {
		return nil, err
	}
	return decodeAccount(raw)
}

func (s *State) updateAccount(addr rstake.Address, acc *Account) error {
	raw, err := encodeAccount(acc)
	if err != nil {
		return err
	}
	s.sm.Put(stateKey{kind: accountPrefix, addr: addr}, raw)
	return nil
}

// GetBalance returns base asset balance for the given address.
func (s *State) GetBalance(addr rstake.Address) (uint64, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return 0, &Error{err}
	}
	return acc.Balance, nil
}

// SetBalance set base asset balance for the given address.
func (s *State) SetBalance(addr rstake.Address, balance uint64) error {
	acc, err := s.getAccount(addr)
	if err != nil {
		return &Error{err}
	}
	acc.Balance = balance
	if err := s.updateAccount(addr, acc); err != nil {
		return &Error{err}
	}
	return nil
}

// AddBalance adds amount to the balance of the given address.
func (s *State) AddBalance(addr rstake.Address, amount uint64) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal > math.MaxUint64-amount {
		return &Error{fmt.Errorf("balance overflow: %v", addr)}
	}
	return s.SetBalance(addr, bal+amount)
}

// SubBalance subs amount from the balance of the given address.
// False is returned if the balance is insufficient, and nothing changed.
func (s *State) SubBalance(addr rstake.Address, amount uint64) (bool, error) {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if bal < amount {
		return false, nil
	}
	return true, s.SetBalance(addr, bal-amount)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr rstake.Address, key rstake.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(stateKey{kind: storagePrefix, addr: addr, slot: key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
// An empty value deletes the slot.
func (s *State) SetRawStorage(addr rstake.Address, key rstake.Bytes32, raw rlp.RawValue) {
	s.sm.Put(stateKey{kind: storagePrefix, addr: addr, slot: key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr rstake.Address, key rstake.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr rstake.Address, key rstake.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		panic("invalid revision")
	}
	s.sm.PopTo(revision)
}

// Dirty returns the number of pending writes.
func (s *State) Dirty() int {
	n := 0
	s.sm.Journal(func(stateKey, []byte) bool {
		n++
		return true
	})
	return n
}

// Commit writes all pending changes into the store in one batch and
// starts a fresh revision stack.
func (s *State) Commit() error {
	changes := make(map[stateKey][]byte)
	var order []stateKey
	s.sm.Journal(func(k stateKey, v []byte) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})
	if len(order) == 0 {
		return nil
	}

	if err := s.store.Batch(func(w kv.PutFlusher) error {
		for _, k := range order {
			if v := changes[k]; len(v) == 0 {
				if err := w.Delete(k.dbKey()); err != nil {
					return err
				}
			} else {
				if err := w.Put(k.dbKey(), v); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		metricCommitCounter().AddWithLabel(1, map[string]string{"type": "failed"})
		return &Error{err}
	}

	for _, k := range order {
		s.cache.Add(string(k.dbKey()), []byte(changes[k]))
	}
	s.sm = stackedmap.New(s.load)
	metricCommitCounter().AddWithLabel(1, map[string]string{"type": "committed"})
	return nil
}

// Discard drops all pending changes.
func (s *State) Discard() {
	s.sm = stackedmap.New(s.load)
}
