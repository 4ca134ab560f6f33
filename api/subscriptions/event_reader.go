// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/rstake/node/eventdb"
)

// eventReader reads indexed events in seq order, starting after a position.
type eventReader struct {
	db    *eventdb.EventDB
	kinds []string
	pos   uint64
	batch uint64
}

func newEventReader(db *eventdb.EventDB, kinds []string, pos uint64) *eventReader {
	return &eventReader{db: db, kinds: kinds, pos: pos, batch: 100}
}

// Read returns the next events after the current position and moves past them.
// It returns an empty slice when there is nothing new.
func (r *eventReader) Read(ctx context.Context) ([]*eventdb.Event, error) {
	events, err := r.db.Filter(ctx, &eventdb.Filter{
		After:   r.pos,
		Kinds:   r.kinds,
		Order:   eventdb.ASC,
		Options: &eventdb.Options{Limit: r.batch},
	})
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		r.pos = events[len(events)-1].Seq
	}
	return events, nil
}
