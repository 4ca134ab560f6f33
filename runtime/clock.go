// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// Clock supplies the current epoch of the delegation network.
type Clock interface {
	Epoch() uint64
}

// ManualClock is advanced explicitly. Used by solo mode and tests.
type ManualClock struct {
	epoch atomic.Uint64
}

// NewManualClock creates a clock at epoch.
func NewManualClock(epoch uint64) *ManualClock {
	c := &ManualClock{}
	c.epoch.Store(epoch)
	return c
}

func (c *ManualClock) Epoch() uint64 {
	return c.epoch.Load()
}

// Advance moves the clock n epochs forward and returns the new epoch.
func (c *ManualClock) Advance(n uint64) uint64 {
	return c.epoch.Add(n)
}

// TimeClock derives epochs from wall-clock time since start.
type TimeClock struct {
	start    time.Time
	duration time.Duration
	now      func() time.Time
}

// NewTimeClock creates a clock whose epoch 0 begins at start and lasts duration.
func NewTimeClock(start time.Time, duration time.Duration) (*TimeClock, error) {
	if duration <= 0 {
		return nil, errors.Errorf("invalid epoch duration %v", duration)
	}
	return &TimeClock{start: start, duration: duration, now: time.Now}, nil
}

func (c *TimeClock) Epoch() uint64 {
	elapsed := c.now().Sub(c.start)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / c.duration)
}

// Duration returns the length of one epoch.
func (c *TimeClock) Duration() time.Duration {
	return c.duration
}
