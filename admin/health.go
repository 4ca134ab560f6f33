// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"context"

	"github.com/rstake/node/runtime"
)

// Status describes the health of the node.
type Status struct {
	Healthy     bool   `json:"healthy"`
	Initialized bool   `json:"initialized"`
	Epoch       uint64 `json:"epoch"`
	LatestEra   uint64 `json:"latestEra"`
	// EraLag counts the epochs the balancer has not opened an era for.
	EraLag  uint64 `json:"eraLag"`
	Settled bool   `json:"settled"`
	Error   string `json:"error,omitempty"`
}

type Health interface {
	Status(ctx context.Context) (*Status, error)
}

// RuntimeHealth reports the health of a runtime. A non-zero MaxEraLag marks the
// node unhealthy once the era lag goes beyond it.
type RuntimeHealth struct {
	rt        *runtime.Runtime
	MaxEraLag uint64
}

func NewRuntimeHealth(rt *runtime.Runtime, maxEraLag uint64) *RuntimeHealth {
	return &RuntimeHealth{rt, maxEraLag}
}

func (h *RuntimeHealth) Status(ctx context.Context) (*Status, error) {
	status := &Status{}
	err := h.rt.View(ctx, func(env *runtime.Env) error {
		status.Epoch = env.Epoch
		l, err := env.Manager.Ledger()
		if err != nil {
			return err
		}
		if !l.IsInitialized() {
			return nil
		}
		status.Initialized = true
		status.LatestEra = l.LatestEra
		status.Settled = l.EraProcessData.IsEmpty()
		if env.Epoch > l.LatestEra {
			status.EraLag = env.Epoch - l.LatestEra
		}
		return nil
	})
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.Healthy = status.Initialized && (h.MaxEraLag == 0 || status.EraLag <= h.MaxEraLag)
	return status, nil
}
