// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rstake/node/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	persist, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{16, 16})
	require.NoError(t, err)
	defer persist.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*LevelDB{persist, mem} {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDBBatch(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Batch(func(w kv.PutFlusher) error {
		assert.NoError(t, w.Put([]byte("a1"), []byte("1")))
		assert.NoError(t, w.Flush())
		assert.NoError(t, w.Put([]byte("a2"), []byte("2")))
		return w.Put([]byte("b1"), []byte("3"))
	}))

	var keys []string
	require.NoError(t, db.Iterate(kv.Prefix([]byte("a")), func(p kv.Pair) bool {
		keys = append(keys, string(p.Key()))
		return true
	}))
	assert.Equal(t, []string{"a1", "a2"}, keys)

	// a failed batch writes nothing that was not flushed
	boom := errors.New("boom")
	err = db.Batch(func(w kv.PutFlusher) error {
		_ = w.Put([]byte("c1"), []byte("1"))
		return boom
	})
	assert.Equal(t, boom, err)
	has, err := db.Has([]byte("c1"))
	assert.NoError(t, err)
	assert.False(t, has)
}
