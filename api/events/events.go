// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rstake/node/api/utils"
	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/eventdb"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	if limit == 0 || limit > eventdb.MaxLimit {
		limit = eventdb.MaxLimit
	}
	return &Events{
		db,
		limit,
	}
}

func parseUint(query url.Values, name string) (*uint64, error) {
	s := query.Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, name))
	}
	return &v, nil
}

// parseFilter reads kind, from, to, offset, limit and order from the query.
func (e *Events) parseFilter(query url.Values) (*eventdb.Filter, error) {
	filter := &eventdb.Filter{
		Options: &eventdb.Options{Limit: e.limit},
	}

	for _, v := range query["kind"] {
		for kind := range strings.SplitSeq(v, ",") {
			if !slices.Contains(stakemgr.Kinds, stakemgr.Kind(kind)) {
				return nil, utils.BadRequest(fmt.Errorf("kind: unknown %q", kind))
			}
			filter.Kinds = append(filter.Kinds, kind)
		}
	}

	from, err := parseUint(query, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseUint(query, "to")
	if err != nil {
		return nil, err
	}
	if from != nil || to != nil {
		filter.Range = &eventdb.Range{}
		if from != nil {
			filter.Range.From = *from
		}
		if to != nil {
			if *to < filter.Range.From {
				return nil, utils.BadRequest(errors.New("to must be greater than or equal to from"))
			}
			filter.Range.To = *to
		}
	}

	offset, err := parseUint(query, "offset")
	if err != nil {
		return nil, err
	}
	if offset != nil {
		filter.Options.Offset = *offset
	}
	limit, err := parseUint(query, "limit")
	if err != nil {
		return nil, err
	}
	if limit != nil {
		if *limit > e.limit {
			return nil, utils.HTTPError(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit), http.StatusForbidden)
		}
		filter.Options.Limit = *limit
	}

	switch order := eventdb.Order(strings.ToLower(query.Get("order"))); order {
	case "", eventdb.ASC:
		filter.Order = eventdb.ASC
	case eventdb.DESC:
		filter.Order = eventdb.DESC
	default:
		return nil, utils.BadRequest(fmt.Errorf("order: unknown %q", order))
	}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req.URL.Query())
	if err != nil {
		return err
	}
	events, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	if events == nil {
		events = []*eventdb.Event{}
	}
	return utils.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
