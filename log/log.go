// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log hands out package loggers that follow the handler installed at
// startup, so loggers created during package init are not bound to the default.
package log

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

var current atomic.Pointer[slog.Handler]

func init() {
	h := ethlog.DiscardHandler()
	current.Store(&h)
}

// WithContext returns a logger carrying ctx as leading key/value pairs.
func WithContext(ctx ...any) ethlog.Logger {
	return ethlog.NewLogger(&handler{}).With(ctx...)
}

// SetHandler routes every logger of the process to h, including the go-ethereum root.
func SetHandler(h slog.Handler) {
	current.Store(&h)
	ethlog.SetDefault(ethlog.NewLogger(&handler{}))
}

// handler resolves the installed handler on every record.
type handler struct {
	attrs []slog.Attr
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*current.Load()).Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	target := *current.Load()
	if len(h.attrs) > 0 {
		target = target.WithAttrs(h.attrs)
	}
	return target.Handle(ctx, r)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{attrs: append(slices.Clip(h.attrs), attrs...)}
}

// WithGroup is a no-op: node loggers only carry flat key/value pairs.
func (h *handler) WithGroup(string) slog.Handler {
	return h
}
