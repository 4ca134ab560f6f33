// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/rstake/node/api/era"
	"github.com/rstake/node/api/events"
	"github.com/rstake/node/api/ledger"
	"github.com/rstake/node/api/middleware"
	"github.com/rstake/node/api/staker"
	"github.com/rstake/node/api/subscriptions"
	"github.com/rstake/node/log"
	"github.com/rstake/node/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	PprofOn         bool
	EnableReqLogger *atomic.Bool
	SlowQueries     time.Duration
	Log5xxErrors    bool
	EnableMetrics   bool
	EventsLimit     uint64
	// SoloMode mounts the epoch tick route. It needs a manual clock.
	SoloMode bool
}

// New returns the api router and a func closing hijacked subscription connections.
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	ledger.New(rt).
		Mount(router, "/ledger")
	staker.New(rt).
		Mount(router, "/staker")
	era.New(rt).
		Mount(router, "/era", opts.SoloMode)

	closeSubs := func() {}
	if db := rt.EventDB(); db != nil {
		events.New(db, opts.EventsLimit).
			Mount(router, "/events")
		subs := subscriptions.New(db, rt, origins)
		subs.Mount(router, "/subscriptions")
		closeSubs = subs.Close
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	handler = middleware.RequestLogger(logger, middleware.LoggerOptions{
		Enabled:       opts.EnableReqLogger,
		SlowThreshold: opts.SlowQueries,
		Log5xx:        opts.Log5xxErrors,
	})(handler)

	return handler.ServeHTTP, closeSubs
}
