// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/rstake/node/genesis"
	"github.com/rstake/node/kv"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

const (
	stateBucket = kv.Bucket("s")
	metaBucket  = kv.Bucket("m")
)

var (
	genesisIDKey  = []byte("genesis-id")
	epochStartKey = []byte("epoch-start")
)

// initState opens the ledger state, building the genesis on the first start.
// It refuses a store built from another genesis.
func initState(gen *genesis.Genesis, db kv.Store) (*state.State, error) {
	id, err := gen.ID()
	if err != nil {
		return nil, errors.Wrap(err, "compute genesis id")
	}
	meta := metaBucket.NewStore(db)
	st := state.New(stateBucket.NewStore(db))

	stored, err := meta.Get(genesisIDKey)
	if err != nil && !meta.IsNotFound(err) {
		return nil, errors.Wrap(err, "read genesis id")
	}
	if err == nil {
		if rstake.BytesToBytes32(stored) != id {
			return nil, errors.Errorf("database was built from genesis %v, not %v", rstake.BytesToBytes32(stored), id)
		}
		return st, nil
	}

	if err := gen.Build(st); err != nil {
		st.Discard()
		return nil, errors.Wrap(err, "build genesis")
	}
	if err := st.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit genesis")
	}
	if err := meta.Put(genesisIDKey, id.Bytes()); err != nil {
		return nil, errors.Wrap(err, "write genesis id")
	}
	logger.Info("genesis built", "id", id, "manager", gen.Manager)
	return st, nil
}

// loadEpochStart returns the start of epoch 0. The first start stores it, so
// epochs survive restarts. A zero preferred value means now.
func loadEpochStart(db kv.Store, preferred int64) (time.Time, error) {
	meta := metaBucket.NewStore(db)
	stored, err := meta.Get(epochStartKey)
	if err == nil {
		if len(stored) != 8 {
			return time.Time{}, errors.New("corrupted epoch start")
		}
		return time.Unix(int64(binary.BigEndian.Uint64(stored)), 0), nil
	}
	if !meta.IsNotFound(err) {
		return time.Time{}, errors.Wrap(err, "read epoch start")
	}

	start := time.Now().Unix()
	if preferred != 0 {
		start = preferred
	}
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], uint64(start))
	if err := meta.Put(epochStartKey, enc[:]); err != nil {
		return time.Time{}, errors.Wrap(err, "write epoch start")
	}
	return time.Unix(start, 0), nil
}

// handleExitSignal returns a context canceled on the first SIGINT or SIGTERM.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(name string, gen *genesis.Genesis, instanceDir, apiURL string, epochDuration time.Duration) {
	id, _ := gen.ID()
	fmt.Printf(`Starting %v
    Genesis      [ %v ]
    Manager      [ %v ]
    Pool         [ %v ]
    Admin        [ %v ]
    Epoch        [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		fmt.Sprintf("%s/%s/%s/%s", name, fullVersion(), runtime.GOOS, runtime.Version()),
		id,
		gen.Manager,
		rstake.PoolAddress(gen.Manager),
		gen.Admin,
		func() string {
			if epochDuration == 0 {
				return "manual, advanced by /era/tick"
			}
			return epochDuration.String()
		}(),
		instanceDir,
		apiURL)
}

func printDevAccounts() {
	fmt.Println("    Dev accounts")
	for i, acc := range genesis.DevAccounts() {
		fmt.Printf("      [%d] %v %d\n", i, acc, genesis.DevAccountBalance)
	}
	fmt.Println("    Dev validators")
	for i, v := range genesis.DevValidators() {
		fmt.Printf("      [%d] %v\n", i, v)
	}
}

func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "io.rstake.node")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "io.rstake.node")
		default:
			return filepath.Join(home, ".io.rstake.node")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
