// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpserver runs the node's http listeners.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rstake/node/co"
	"github.com/rstake/node/log"
	"github.com/rstake/node/metrics"
)

var logger = log.WithContext("pkg", "httpserver")

// shutdownTimeout bounds how long in-flight requests may drain on close.
const shutdownTimeout = 5 * time.Second

// Start listens on addr and serves handler. It returns the url of path on the
// bound address and a func that shuts the server down.
func Start(name, addr string, handler http.Handler, path string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server stopped", "name", name, "err", err)
		}
	})

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Debug("forced close", "name", name, "err", err)
			srv.Close()
		}
		goes.Wait()
	}
	return "http://" + listener.Addr().String() + path, shutdown, nil
}

// StartMetricsServer serves the prometheus endpoint on addr.
func StartMetricsServer(addr string) (string, func(), error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return Start("metrics", addr, handlers.CompressHandler(router), "/metrics")
}
