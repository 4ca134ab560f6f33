// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// levelHandler gates an unfiltered handler by an adjustable level.
type levelHandler struct {
	inner slog.Handler
	lvl   *slog.LevelVar
}

// NewTerminalHandlerWithLevel returns a terminal handler which only outputs records at
// or above lvl. Changes to lvl take effect immediately.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar, useColor bool) slog.Handler {
	return &levelHandler{ethlog.NewTerminalHandler(wr, useColor), lvl}
}

// JSONHandlerWithLevel returns a handler which prints records in JSON format at or above level.
func JSONHandlerWithLevel(wr io.Writer, level *slog.LevelVar) slog.Handler {
	return &levelHandler{ethlog.JSONHandler(wr), level}
}

func (h *levelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Enabled(ctx, r.Level) {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{h.inner.WithAttrs(attrs), h.lvl}
}

// WithGroup is a no-op, the terminal handler does not support groups.
func (h *levelHandler) WithGroup(string) slog.Handler {
	return h
}
