// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/rstake/node/metrics"

var (
	metricOpCount    = metrics.LazyLoadCounterVec("runtime_op_count", []string{"op", "outcome"})
	metricOpDuration = metrics.LazyLoadHistogramVec("runtime_op_duration_ms", []string{"op"}, metrics.BucketExecMs)
	metricMailbox    = metrics.LazyLoadGauge("runtime_mailbox_size")
	metricEvents     = metrics.LazyLoadCounterVec("runtime_event_count", []string{"kind"})
)
