// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed events over websocket.
package subscriptions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/rstake/node/api/utils"
	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/co"
	"github.com/rstake/node/eventdb"
	"github.com/rstake/node/log"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 7) / 10
	writeWait  = 10 * time.Second
)

// Notifier tells when new events are committed.
type Notifier interface {
	NewEventWaiter() <-chan struct{}
}

type Subscriptions struct {
	db       *eventdb.EventDB
	notifier Notifier
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
	close    sync.Once
}

func New(db *eventdb.EventDB, notifier Notifier, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		db:       db,
		notifier: notifier,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return slices.ContainsFunc(allowedOrigins, func(allowed string) bool {
					return allowed == "*" || allowed == strings.ToLower(u.Host) || allowed == strings.ToLower(origin)
				})
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) parseQuery(query url.Values) ([]string, *uint64, error) {
	var kinds []string
	for _, v := range query["kind"] {
		for kind := range strings.SplitSeq(v, ",") {
			if !slices.Contains(stakemgr.Kinds, stakemgr.Kind(kind)) {
				return nil, nil, utils.BadRequest(fmt.Errorf("kind: unknown %q", kind))
			}
			kinds = append(kinds, kind)
		}
	}
	if p := query.Get("pos"); p != "" {
		pos, err := strconv.ParseUint(p, 0, 64)
		if err != nil {
			return nil, nil, utils.BadRequest(errors.WithMessage(err, "pos"))
		}
		return kinds, &pos, nil
	}
	return kinds, nil, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	kinds, pos, err := s.parseQuery(req.URL.Query())
	if err != nil {
		return err
	}
	// without a position the stream starts from the next committed event
	if pos == nil {
		latest, err := s.db.Latest(req.Context())
		if err != nil {
			return err
		}
		var seq uint64
		if latest != nil {
			seq = latest.Seq
		}
		pos = &seq
	}

	s.wg.Add(1)
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	err = s.pipe(conn, newEventReader(s.db, kinds, *pos))
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			closeMsg = nil
		} else {
			logger.Debug("error in websocket", "err", err)
			closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		}
	}
	if closeMsg != nil {
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
	}
	conn.Close()
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader *eventReader) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var goes co.Goes
	defer goes.Wait()

	closed := make(chan error, 1)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	goes.Go(func() {
		// the reader only consumes control frames
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closed <- err
				cancel()
				return
			}
		}
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.SetReadDeadline(time.Now())

	for {
		// take the waiter before reading so no commit is missed in between
		waiter := s.notifier.NewEventWaiter()
		events, err := reader.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return <-closed
			}
			return err
		}
		if len(events) > 0 {
			for _, ev := range events {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(ev); err != nil {
					return err
				}
			}
			continue
		}

		select {
		case <-s.done:
			return nil
		case err := <-closed:
			return err
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-waiter:
		}
	}
}

// Close ends all streams and waits for them to exit.
func (s *Subscriptions) Close() {
	s.close.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
