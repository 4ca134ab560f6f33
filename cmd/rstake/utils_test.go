// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstake/node/admin"
	"github.com/rstake/node/genesis"
	"github.com/rstake/node/lvldb"
	"github.com/rstake/node/runtime"
)

func TestInitState(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gen := genesis.NewDevnet()
	st, err := initState(gen, db)
	require.NoError(t, err)

	rt := runtime.New(st, runtime.Options{Manager: gen.Manager})
	require.NoError(t, rt.View(context.Background(), func(env *runtime.Env) error {
		l, err := env.Manager.Ledger()
		require.NoError(t, err)
		assert.True(t, l.IsInitialized())
		return nil
	}))
	rt.Stop()

	// the second start reuses the stored world
	_, err = initState(gen, db)
	require.NoError(t, err)

	other := genesis.NewDevnet()
	other.LatestEra = 7
	_, err = initState(other, db)
	assert.ErrorContains(t, err, "database was built from genesis")
}

func TestLoadEpochStart(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	start, err := loadEpochStart(db, 1_700_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), start.Unix())

	// later preferences do not move a stored start
	start, err = loadEpochStart(db, 1_800_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), start.Unix())
}

func TestLoadEpochStartDefaultsToNow(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	before := time.Now().Unix()
	start, err := loadEpochStart(db, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, start.Unix(), before)
	assert.LessOrEqual(t, start.Unix(), time.Now().Unix())
}

type countingHealth struct {
	calls atomic.Int32
}

func (h *countingHealth) Status(context.Context) (*admin.Status, error) {
	h.calls.Add(1)
	return &admin.Status{Initialized: true, Epoch: 3, LatestEra: 1, EraLag: 2}, nil
}

func TestWatchEras(t *testing.T) {
	health := &countingHealth{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		watchEras(ctx, health, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return health.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestClockOffsetTooLarge(t *testing.T) {
	tests := []struct {
		offset, epoch time.Duration
		want          bool
	}{
		{500 * time.Millisecond, time.Minute, false},
		{2 * time.Second, time.Minute, true},
		{-2 * time.Second, time.Minute, true},
		{30 * time.Second, 24 * time.Hour, false},
		{2 * time.Minute, 24 * time.Hour, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clockOffsetTooLarge(tt.offset, tt.epoch), "offset %v epoch %v", tt.offset, tt.epoch)
	}
}
