// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime serializes every operation on the pool through one goroutine.
// An operation runs against a state checkpoint: it is committed with its
// events when it succeeds and reverted with its events when it fails.
package runtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rstake/node/builtin/bank"
	"github.com/rstake/node/builtin/minter"
	"github.com/rstake/node/builtin/stakemgr"
	"github.com/rstake/node/builtin/stakemgr/reverts"
	"github.com/rstake/node/builtin/stakeprog"
	"github.com/rstake/node/co"
	"github.com/rstake/node/eventdb"
	"github.com/rstake/node/log"
	"github.com/rstake/node/rstake"
	"github.com/rstake/node/state"
)

var logger = log.WithContext("pkg", "runtime")

// ErrStopped is returned for operations submitted after Stop.
var ErrStopped = errors.New("runtime stopped")

const defaultMailboxSize = 64

// Env is what an operation sees. It is only valid inside the operation.
type Env struct {
	State   *state.State
	Manager *stakemgr.Manager
	Minter  *minter.Minter
	Bank    *bank.Bank
	Program *stakeprog.Program
	Epoch   uint64
}

// Receipt describes a committed operation.
type Receipt struct {
	Epoch  uint64           `json:"epoch"`
	Events []*eventdb.Event `json:"events"`
}

type result struct {
	receipt *Receipt
	err     error
}

type request struct {
	ctx      context.Context
	name     string
	readOnly bool
	fn       func(env *Env) error
	done     chan result
}

// Options configures a Runtime.
type Options struct {
	Manager     rstake.Address
	Clock       Clock
	Events      *eventdb.EventDB // optional
	MailboxSize int
}

// Runtime owns the state and executes operations one at a time.
type Runtime struct {
	state   *state.State
	env     *Env
	clock   Clock
	events  *eventdb.EventDB
	mailbox chan *request
	signal  co.Signal
	goes    co.Goes

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a runtime over st and starts its loop.
func New(st *state.State, opts Options) *Runtime {
	size := opts.MailboxSize
	if size <= 0 {
		size = defaultMailboxSize
	}
	clock := opts.Clock
	if clock == nil {
		clock = NewManualClock(0)
	}

	b := bank.New(st)
	mint := minter.New(rstake.MinterAddress, st)
	prog := stakeprog.New(rstake.StakeProgramAddress, st)
	rt := &Runtime{
		state: st,
		env: &Env{
			State:   st,
			Manager: stakemgr.New(opts.Manager, st, mint, b, prog),
			Minter:  mint,
			Bank:    b,
			Program: prog,
		},
		clock:   clock,
		events:  opts.Events,
		mailbox: make(chan *request, size),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	rt.goes.Go(rt.loop)
	return rt
}

// Clock returns the clock of the runtime.
func (rt *Runtime) Clock() Clock {
	return rt.clock
}

// Manager returns the address of the stake manager.
func (rt *Runtime) Manager() rstake.Address {
	return rt.env.Manager.Address()
}

// EventDB returns the event index, nil if events are not persisted.
func (rt *Runtime) EventDB() *eventdb.EventDB {
	return rt.events
}

// NewEventWaiter returns a channel closed when the next events are committed.
func (rt *Runtime) NewEventWaiter() <-chan struct{} {
	return rt.signal.Wait()
}

// Exec runs fn as a named operation and commits it if fn returns nil.
func (rt *Runtime) Exec(ctx context.Context, name string, fn func(env *Env) error) (*Receipt, error) {
	return rt.submit(ctx, &request{ctx: ctx, name: name, fn: fn})
}

// View runs fn against the current state. Any change made by fn is discarded.
func (rt *Runtime) View(ctx context.Context, fn func(env *Env) error) error {
	_, err := rt.submit(ctx, &request{ctx: ctx, name: "view", readOnly: true, fn: fn})
	return err
}

func (rt *Runtime) submit(ctx context.Context, req *request) (*Receipt, error) {
	req.done = make(chan result, 1)
	select {
	case <-rt.quit:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	case rt.mailbox <- req:
		metricMailbox().Add(1)
	}

	select {
	case res := <-req.done:
		return res.receipt, res.err
	case <-rt.done:
		return nil, ErrStopped
	}
}

func (rt *Runtime) loop() {
	defer close(rt.done)
	for {
		select {
		case req := <-rt.mailbox:
			metricMailbox().Add(-1)
			req.done <- rt.handle(req)
		case <-rt.quit:
			for {
				select {
				case req := <-rt.mailbox:
					metricMailbox().Add(-1)
					req.done <- result{err: ErrStopped}
				default:
					return
				}
			}
		}
	}
}

func (rt *Runtime) handle(req *request) (res result) {
	if err := req.ctx.Err(); err != nil {
		return result{err: err}
	}

	startTime := time.Now()
	outcome := "ok"
	defer func() {
		if !req.readOnly {
			metricOpCount().AddWithLabel(1, map[string]string{"op": req.name, "outcome": outcome})
			metricOpDuration().ObserveWithLabels(time.Since(startTime).Milliseconds(), map[string]string{"op": req.name})
		}
	}()

	epoch := rt.clock.Epoch()
	rt.env.Epoch = epoch
	checkpoint := rt.state.NewCheckpoint()
	err := rt.run(req)
	emitted := rt.env.Manager.TakeEvents()

	if err != nil || req.readOnly {
		rt.state.RevertTo(checkpoint)
		if err != nil {
			outcome = "error"
			if reverts.IsRevertErr(err) {
				outcome = "revert"
			}
			logger.Debug("operation reverted", "op", req.name, "epoch", epoch, "error", err)
		}
		return result{err: err}
	}

	if err := rt.state.Commit(); err != nil {
		rt.state.Discard()
		outcome = "error"
		logger.Error("failed to commit state", "op", req.name, "error", err)
		return result{err: errors.Wrap(err, "commit")}
	}

	receipt := &Receipt{Epoch: epoch}
	now := uint64(time.Now().Unix())
	for _, ev := range emitted {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Warn("failed to encode event", "kind", ev.Kind, "error", err)
			continue
		}
		receipt.Events = append(receipt.Events, &eventdb.Event{
			Kind:  string(ev.Kind),
			Era:   ev.Era,
			Epoch: epoch,
			Time:  now,
			Data:  data,
		})
		metricEvents().AddWithLabel(1, map[string]string{"kind": string(ev.Kind)})
	}
	if rt.events != nil && len(receipt.Events) > 0 {
		// the state is already committed, an indexing failure only loses history
		if err := rt.events.Insert(context.Background(), receipt.Events); err != nil {
			logger.Error("failed to index events", "op", req.name, "error", err)
		}
	}
	if len(receipt.Events) > 0 {
		rt.signal.Broadcast()
	}
	logger.Debug("operation committed", "op", req.name, "epoch", epoch, "events", len(receipt.Events))
	return result{receipt: receipt}
}

func (rt *Runtime) run(req *request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("operation %s panicked: %v", req.name, r)
		}
	}()
	return req.fn(rt.env)
}

// Stop stops the loop. Queued operations fail with ErrStopped.
func (rt *Runtime) Stop() {
	rt.stopOnce.Do(func() {
		close(rt.quit)
	})
	rt.goes.Wait()
}
