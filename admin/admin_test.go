// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstake/node/genesis"
	"github.com/rstake/node/lvldb"
	"github.com/rstake/node/runtime"
	"github.com/rstake/node/state"
)

func serve(h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLogLevel(t *testing.T) {
	var logLevel slog.LevelVar
	logLevel.Set(slog.LevelInfo)
	h := HTTPHandler(&logLevel, new(atomic.Bool), nil)

	rr := serve(h, http.MethodGet, "/admin/loglevel", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var res logLevelResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "INFO", res.CurrentLevel)

	rr = serve(h, http.MethodPost, "/admin/loglevel", []byte(`{"level":"debug"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "DEBUG", res.CurrentLevel)
	assert.Equal(t, slog.LevelDebug, logLevel.Level())

	rr = serve(h, http.MethodPost, "/admin/loglevel", []byte(`{"level":"invalid_body"}`))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var errRes errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
	assert.Equal(t, "Invalid verbosity level", errRes.ErrorMessage)

	rr = serve(h, http.MethodPost, "/admin/loglevel", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(h, http.MethodDelete, "/admin/loglevel", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestAPILogs(t *testing.T) {
	var apiLogs atomic.Bool
	h := HTTPHandler(new(slog.LevelVar), &apiLogs, nil)

	rr := serve(h, http.MethodPost, "/admin/apilogs", []byte(`{"enabled":true}`))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, apiLogs.Load())

	rr = serve(h, http.MethodGet, "/admin/apilogs", nil)
	var res apiLogsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.True(t, res.Enabled)
}

func TestHealth(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gen := genesis.NewDevnet()
	st := state.New(db)
	require.NoError(t, gen.Build(st))
	require.NoError(t, st.Commit())

	clock := runtime.NewManualClock(0)
	rt := runtime.New(st, runtime.Options{Manager: gen.Manager, Clock: clock})
	defer rt.Stop()

	health := NewRuntimeHealth(rt, 2)
	h := HTTPHandler(new(slog.LevelVar), new(atomic.Bool), health)

	rr := serve(h, http.MethodGet, "/admin/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var status Status
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.True(t, status.Healthy)
	assert.True(t, status.Settled)

	// the balancer falls behind
	clock.Advance(3)
	rr = serve(h, http.MethodGet, "/admin/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.Equal(t, uint64(3), status.EraLag)

	_, err = rt.Exec(context.Background(), "era_new", func(env *runtime.Env) error {
		return env.Manager.EraNew(env.Epoch)
	})
	require.NoError(t, err)
	got, err := health.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Healthy)
	assert.Equal(t, uint64(2), got.EraLag)

	rt.Stop()
	got, err = health.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Healthy)
	assert.NotEmpty(t, got.Error)
}
