// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstake/node/co"
	"github.com/rstake/node/eventdb"
)

type signalNotifier struct {
	co.Signal
}

func (n *signalNotifier) NewEventWaiter() <-chan struct{} {
	return n.Wait()
}

type testServer struct {
	ts       *httptest.Server
	db       *eventdb.EventDB
	notifier *signalNotifier
	subs     *Subscriptions
}

func newTestServer(t *testing.T, origins []string) *testServer {
	db, err := eventdb.NewMem()
	require.NoError(t, err)

	notifier := &signalNotifier{}
	subs := New(db, notifier, origins)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)

	t.Cleanup(func() {
		subs.Close()
		ts.Close()
		db.Close()
	})
	return &testServer{ts, db, notifier, subs}
}

func (s *testServer) insert(t *testing.T, kinds ...string) {
	var events []*eventdb.Event
	for _, kind := range kinds {
		events = append(events, &eventdb.Event{Kind: kind, Era: 1, Data: json.RawMessage(`{}`)})
	}
	require.NoError(t, s.db.Insert(context.Background(), events))
	s.notifier.Broadcast()
}

func (s *testServer) dial(t *testing.T, query string) *websocket.Conn {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(s.ts.URL, "http://"), Path: "/subscriptions/events", RawQuery: query}
	conn, res, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *eventdb.Event {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev eventdb.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return &ev
}

func TestSubscribeFromPosition(t *testing.T) {
	s := newTestServer(t, []string{"*"})
	s.insert(t, "stake", "era_new", "stake")

	conn := s.dial(t, "pos=1")
	assert.Equal(t, uint64(2), readEvent(t, conn).Seq)
	assert.Equal(t, uint64(3), readEvent(t, conn).Seq)

	// live events follow the backlog
	s.insert(t, "unstake")
	ev := readEvent(t, conn)
	assert.Equal(t, uint64(4), ev.Seq)
	assert.Equal(t, "unstake", ev.Kind)
}

func TestSubscribeLatest(t *testing.T) {
	s := newTestServer(t, nil)
	s.insert(t, "stake", "stake")

	// without a position only new events are streamed
	conn := s.dial(t, "")
	s.insert(t, "era_new")
	ev := readEvent(t, conn)
	assert.Equal(t, uint64(3), ev.Seq)
	assert.Equal(t, "era_new", ev.Kind)
}

func TestSubscribeKinds(t *testing.T) {
	s := newTestServer(t, nil)
	conn := s.dial(t, "pos=0&kind=withdraw")

	s.insert(t, "stake", "withdraw", "era_new", "withdraw")
	assert.Equal(t, uint64(2), readEvent(t, conn).Seq)
	assert.Equal(t, uint64(4), readEvent(t, conn).Seq)
}

func TestSubscribeBadQuery(t *testing.T) {
	s := newTestServer(t, nil)

	res, err := http.Get(s.ts.URL + "/subscriptions/events?kind=nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Get(s.ts.URL + "/subscriptions/events?pos=x")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	s := newTestServer(t, []string{"example.org"})
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(s.ts.URL, "http://"), Path: "/subscriptions/events"}

	header := http.Header{"Origin": []string{"https://evil.com"}}
	_, res, err := websocket.DefaultDialer.Dial(u.String(), header)
	assert.Error(t, err)
	if res != nil {
		res.Body.Close()
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	}

	header = http.Header{"Origin": []string{"https://example.org"}}
	conn, res, err := websocket.DefaultDialer.Dial(u.String(), header)
	require.NoError(t, err)
	res.Body.Close()
	conn.Close()
}

func TestClose(t *testing.T) {
	s := newTestServer(t, nil)
	conn := s.dial(t, "")

	s.subs.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
}

func TestEventReader(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	var events []*eventdb.Event
	for range 5 {
		events = append(events, &eventdb.Event{Kind: "stake", Data: json.RawMessage(`{}`)})
	}
	require.NoError(t, db.Insert(context.Background(), events))

	r := newEventReader(db, nil, 1)
	r.batch = 2

	got, err := r.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].Seq)

	got, err = r.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(5), got[1].Seq)

	got, err = r.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, uint64(5), r.pos)
}
