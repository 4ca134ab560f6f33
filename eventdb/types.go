// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import "encoding/json"

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Event is a persisted operation event. Seq is assigned on insert and grows monotonically.
type Event struct {
	Seq   uint64          `json:"seq"`
	Kind  string          `json:"kind"`
	Era   uint64          `json:"era"`
	Epoch uint64          `json:"epoch"`
	Time  uint64          `json:"time"`
	Data  json.RawMessage `json:"data"`
}

// Range is an inclusive era range. A To lower than From leaves the range open ended.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Nil fields match everything.
type Filter struct {
	After   uint64   `json:"after"` // only events with a greater seq
	Kinds   []string `json:"kinds"`
	Range   *Range   `json:"range"`
	Order   Order    `json:"order"` // default asc
	Options *Options `json:"options"`
}
