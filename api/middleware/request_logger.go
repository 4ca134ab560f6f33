// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

// StatusRecorder captures the status code written by the wrapped handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{w, http.StatusOK}
}

func (r *StatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *StatusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *StatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggerOptions selects which requests get logged.
type LoggerOptions struct {
	// Enabled logs every request while set.
	Enabled *atomic.Bool
	// SlowThreshold logs requests slower than it. Zero disables.
	SlowThreshold time.Duration
	// Log5xx logs requests answered with a server error.
	Log5xx bool
}

func (o *LoggerOptions) enabled() bool {
	return o.Enabled != nil && o.Enabled.Load()
}

// RequestLogger returns a middleware that logs requests along with their body.
func RequestLogger(logger log.Logger, opts LoggerOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !opts.enabled() && opts.SlowThreshold == 0 && !opts.Log5xx {
				next.ServeHTTP(w, r)
				return
			}

			var body []byte
			if r.Body != nil {
				var err error
				if body, err = io.ReadAll(r.Body); err != nil {
					logger.Warn("unexpected body read error", "err", err)
					http.Error(w, "read body", http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			start := time.Now()
			rec := NewStatusRecorder(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			slow := opts.SlowThreshold > 0 && duration > opts.SlowThreshold
			failed := opts.Log5xx && rec.Status >= http.StatusInternalServerError
			if !opts.enabled() && !slow && !failed {
				return
			}
			ctx := []any{
				"durationMs", duration.Milliseconds(),
				"timestamp", start.Unix(),
				"uri", r.URL.String(),
				"method", r.Method,
				"status", rec.Status,
				"body", string(body),
			}
			if failed {
				logger.Warn("API request failed", ctx...)
			} else {
				logger.Info("API request", ctx...)
			}
		})
	}
}
