package tlg

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/log"
	"github.com/tgwatch/tgwatch/internal/types"
)

// maxConsecutiveFailures is the threshold at which a receiver gives up
// reconnecting and escalates its account to error, per the supervisor's
// failure semantics.
const maxConsecutiveFailures = 5

// reconnectDelays is the bounded backoff sequence: 1s, 2s, 5s, 15s, 60s,
// capped.
var reconnectDelays = []time.Duration{
	time.Second,
	2 * time.Second,
	5 * time.Second,
	15 * time.Second,
	60 * time.Second,
}

// reconnectBackoff implements cenkalti/backoff/v4's BackOff interface over
// the fixed delay sequence above, rather than its default jittered
// exponential curve.
type reconnectBackoff struct{ i int }

func (b *reconnectBackoff) NextBackOff() time.Duration {
	d := reconnectDelays[b.i]
	if b.i < len(reconnectDelays)-1 {
		b.i++
	}
	return d
}

func (b *reconnectBackoff) Reset() { b.i = 0 }

// StatusSink persists an account's status transitions as the supervisor
// observes them, decoupling this package from the repo layer.
type StatusSink interface {
	SetStatus(ctx context.Context, accountID bson.ObjectID, status types.AccountStatus, lastErr string)
}

// ClientFactory builds an unconnected receiver for one account.
type ClientFactory func(account types.AccountDoc, onMsg MessageHandler) (IClient, error)

type worker struct {
	account types.AccountDoc
	cancel  context.CancelFunc
	done    chan struct{}
}

// Supervisor owns one long-lived receiver per active account within a
// tenant, restarting it on transient failure and escalating to error on
// repeated or catastrophic failure.
type Supervisor struct {
	tenantID bson.ObjectID
	factory  ClientFactory
	sink     StatusSink
	onMsg    MessageHandler

	mu      sync.Mutex
	workers map[bson.ObjectID]*worker
}

func NewSupervisor(tenantID bson.ObjectID, factory ClientFactory, sink StatusSink, onMsg MessageHandler) *Supervisor {
	return &Supervisor{
		tenantID: tenantID,
		factory:  factory,
		sink:     sink,
		onMsg:    onMsg,
		workers:  map[bson.ObjectID]*worker{},
	}
}

// Start launches a receiver for account unless one is already running.
func (s *Supervisor) Start(ctx context.Context, account types.AccountDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[account.ID]; ok {
		return nil
	}
	wctx, cancel := context.WithCancel(ctx)
	w := &worker{account: account, cancel: cancel, done: make(chan struct{})}
	s.workers[account.ID] = w
	go s.run(wctx, w)
	return nil
}

// Stop cancels and waits for account's receiver to exit, if running.
func (s *Supervisor) Stop(accountID bson.ObjectID) {
	s.mu.Lock()
	w, ok := s.workers[accountID]
	if ok {
		delete(s.workers, accountID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	w.cancel()
	<-w.done
}

// Running reports the accounts currently under supervision.
func (s *Supervisor) Running() []bson.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]bson.ObjectID, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	return ids
}

func (s *Supervisor) run(ctx context.Context, w *worker) {
	defer close(w.done)
	ll := log.GetLogger(log.TlgModule).WithField("tenant", s.tenantID.Hex()).WithField("account", w.account.ID.Hex())
	bo := &reconnectBackoff{}
	failures := 0
	for ctx.Err() == nil {
		cl, err := s.factory(w.account, s.onMsg)
		if err == nil {
			err = cl.Connect()
		}
		if err == nil {
			failures = 0
			bo.Reset()
			s.sink.SetStatus(ctx, w.account.ID, types.AccountActive, "")
			idleErr := cl.GetClient().Idle()
			cl.Disconnect()
			if ctx.Err() != nil {
				return
			}
			if idleErr == nil {
				continue
			}
			err = idleErr
		}
		if errs.Is(err, errs.ArtifactInvalid) {
			ll.WithError(err).Error("catastrophic session error, not retrying")
			s.sink.SetStatus(ctx, w.account.ID, types.AccountError, err.Error())
			return
		}
		failures++
		ll.WithError(err).Warnf("receiver failed (%d/%d)", failures, maxConsecutiveFailures)
		if failures >= maxConsecutiveFailures {
			s.sink.SetStatus(ctx, w.account.ID, types.AccountError, err.Error())
			return
		}
		wait := bo.NextBackOff()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}
