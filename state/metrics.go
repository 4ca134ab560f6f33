// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/rstake/node/metrics"

var (
	metricCacheCounter  = metrics.LazyLoadCounterVec("state_cache_count", []string{"event"})
	metricCommitCounter = metrics.LazyLoadCounterVec("state_commit_count", []string{"type"})
)
