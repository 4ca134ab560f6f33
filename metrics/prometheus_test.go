// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics() // make sure it starts in the default state of noopMeter

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGauge", nil),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}
	require.Nil(t, HTTPHandler())

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", []string{"l"})
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", []string{"l"})
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", []string{"l"}, nil)

	// after initialization, newly created metrics become of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
	require.NotNil(t, HTTPHandler())
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count := Counter("ops_total")
	countVec := CounterVec("ops_by_name", []string{"name"})
	gauge := Gauge("latest_era")
	hist := Histogram("exec_ms", BucketExecMs)

	// same name returns the same meter
	require.Equal(t, count, Counter("ops_total"))

	total := 0
	for i := range 10 {
		count.Add(1)
		countVec.AddWithLabel(1, map[string]string{"name": strconv.Itoa(i % 2)})
		hist.Observe(int64(i))
		total += i
	}
	gauge.Set(42)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		found[mf.GetName()] = mf
	}

	require.Equal(t, float64(10), found["rstake_ops_total"].Metric[0].GetCounter().GetValue())
	require.Len(t, found["rstake_ops_by_name"].Metric, 2)
	require.Equal(t, float64(42), found["rstake_latest_era"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(total), found["rstake_exec_ms"].Metric[0].GetHistogram().GetSampleSum())
}
