// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator endpoints of a node: log verbosity,
// request logging and health.
package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// HTTPHandler routes the admin endpoints under /admin. A nil health leaves out the health route.
func HTTPHandler(logLevel *slog.LevelVar, apiLogs *atomic.Bool, health Health) http.Handler {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()
	sub.Path("/loglevel").Methods(http.MethodGet).HandlerFunc(getLogLevelHandler(logLevel))
	sub.Path("/loglevel").Methods(http.MethodPost).HandlerFunc(postLogLevelHandler(logLevel))
	sub.Path("/apilogs").Methods(http.MethodGet).HandlerFunc(getAPILogsHandler(apiLogs))
	sub.Path("/apilogs").Methods(http.MethodPost).HandlerFunc(postAPILogsHandler(apiLogs))
	if health != nil {
		sub.Path("/health").Methods(http.MethodGet).HandlerFunc(healthHandler(health))
	}
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return handlers.CompressHandler(router)
}
