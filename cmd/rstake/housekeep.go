// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rstake/node/admin"
	"github.com/rstake/node/metrics"
)

var (
	metricEpoch  = metrics.LazyLoadGauge("epoch")
	metricEraLag = metrics.LazyLoadGauge("era_lag")
)

// watchEras reports the epoch and how far the balancer lags behind it.
func watchEras(ctx context.Context, health admin.Health, every time.Duration) {
	logger.Debug("enter era watcher")
	defer logger.Debug("leave era watcher")

	if every <= 0 || every > time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var lastEpoch uint64
	for {
		status, err := health.Status(ctx)
		if err == nil && status.Error == "" {
			metricEpoch().Set(int64(status.Epoch))
			metricEraLag().Set(int64(status.EraLag))
			if status.Epoch != lastEpoch {
				lastEpoch = status.Epoch
				logger.Info("epoch", "epoch", status.Epoch, "latestEra", status.LatestEra, "settled", status.Settled)
			}
			if status.EraLag > 0 {
				logger.Debug("era cycle pending", "lag", status.EraLag)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// syncClock warns when the local clock drifts far enough to shift epoch boundaries.
func syncClock(ctx context.Context, epochDuration time.Duration) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		checkClockOffset(epochDuration)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func checkClockOffset(epochDuration time.Duration) {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if clockOffsetTooLarge(resp.ClockOffset, epochDuration) {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

// clockOffsetTooLarge tolerates a thousandth of an epoch, at least one second.
func clockOffsetTooLarge(offset, epochDuration time.Duration) bool {
	if offset < 0 {
		offset = -offset
	}
	tolerance := max(epochDuration/1000, time.Second)
	return offset > tolerance
}
