// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"bytes"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func (m mem) Batch(fn func(PutFlusher) error) error {
	staged := mem{}
	var deleted [][]byte
	w := &struct {
		PutFunc
		DeleteFunc
		FlushFunc
	}{
		staged.Put,
		func(k []byte) error {
			deleted = append(deleted, k)
			return nil
		},
		func() error { return nil },
	}
	if err := fn(w); err != nil {
		return err
	}
	for _, k := range deleted {
		delete(m, string(k))
	}
	for k, v := range staged {
		m[k] = v
	}
	return nil
}

func (m mem) Iterate(r Range, fn func(Pair) bool) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		if bytes.Compare([]byte(k), r.Start) < 0 {
			continue
		}
		if len(r.Limit) > 0 && bytes.Compare([]byte(k), r.Limit) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		key, val := []byte(k), []byte(m[k])
		if !fn(&struct {
			KeyFunc
			ValueFunc
		}{
			func() []byte { return key },
			func() []byte { return val },
		}) {
			break
		}
	}
	return nil
}

func TestBucket_GetterGet(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
		{Bucket("k1"), "", "v1"},
	}
	for _, tt := range tests {
		got, _ := tt.b.NewGetter(m).Get([]byte(tt.key))
		assert.Equal(t, tt.want, string(got), "bucket %q key %q", tt.b, tt.key)
	}
}

func TestBucket_GetterHas(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k1"), "", true},
	}
	for _, tt := range tests {
		got, err := tt.b.NewGetter(m).Has([]byte(tt.key))
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, "bucket %q key %q", tt.b, tt.key)
	}
}

func TestBucket_Store(t *testing.T) {
	m := mem{"other": "x"}
	store := Bucket("b").NewStore(m)

	require.NoError(t, store.Batch(func(w PutFlusher) error {
		if err := w.Put([]byte("1"), []byte("one")); err != nil {
			return err
		}
		return w.Put([]byte("2"), []byte("two"))
	}))
	assert.Equal(t, "one", m["b1"])
	assert.Equal(t, "two", m["b2"])

	_, err := store.Get([]byte("3"))
	assert.True(t, store.IsNotFound(err))

	var keys []string
	require.NoError(t, store.Iterate(Range{}, func(p Pair) bool {
		keys = append(keys, string(p.Key()))
		return true
	}))
	assert.Equal(t, []string{"1", "2"}, keys)

	require.NoError(t, store.Delete([]byte("1")))
	has, err := store.Has([]byte("1"))
	assert.NoError(t, err)
	assert.False(t, has)
}
