// Package health periodically classifies each tenant's active accounts
// into healthy, degraded or failed and drives supervisor restarts on
// failure.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/log"
)

type Status string

const (
	Healthy  Status = "healthy"
	Degraded Status = "degraded"
	Failed   Status = "failed"
)

// Signal is the per-account bookkeeping the monitor classifies on.
type Signal struct {
	Connected              bool
	LastEventAge           time.Duration
	ReconnectCountInWindow int
	QueueDepth             int
}

// SignalSource reports the current Signal for an account; internal/runtime
// implements this over each account's persisted status and last activity.
type SignalSource interface {
	Signal(accountID bson.ObjectID) (Signal, bool)
}

// Restarter stops and restarts a single account's receiver.
type Restarter interface {
	Restart(ctx context.Context, accountID bson.ObjectID)
}

const (
	defaultStaleAfter     = 2 * time.Minute
	defaultMaxQueueDepth  = 100
	defaultFailThreshold  = 3
)

// Classify applies the stale/queueing/reconnect thresholds to sig.
func Classify(sig Signal) Status {
	if !sig.Connected {
		if sig.ReconnectCountInWindow >= defaultFailThreshold {
			return Failed
		}
		return Degraded
	}
	if sig.LastEventAge > defaultStaleAfter || sig.QueueDepth > defaultMaxQueueDepth {
		return Degraded
	}
	return Healthy
}

// Monitor runs on a fixed tick (not per-account) classifying every active
// account of one tenant and restarting failed ones.
type Monitor struct {
	tenantID  bson.ObjectID
	interval  time.Duration
	source    SignalSource
	restarter Restarter

	mut       sync.Mutex
	snapshots map[bson.ObjectID]Status
}

func NewMonitor(tenantID bson.ObjectID, interval time.Duration, source SignalSource, restarter Restarter) *Monitor {
	return &Monitor{
		tenantID:  tenantID,
		interval:  interval,
		source:    source,
		restarter: restarter,
		snapshots: map[bson.ObjectID]Status{},
	}
}

// Run ticks until ctx is cancelled, reclassifying every id accounts()
// returns on each tick.
func (m *Monitor) Run(ctx context.Context, accounts func() []bson.ObjectID) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx, accounts())
		}
	}
}

func (m *Monitor) tick(ctx context.Context, accountIDs []bson.ObjectID) {
	ll := m.getLogger("tick")
	for _, id := range accountIDs {
		sig, ok := m.source.Signal(id)
		if !ok {
			continue
		}
		status := Classify(sig)
		m.mut.Lock()
		m.snapshots[id] = status
		m.mut.Unlock()
		switch status {
		case Failed:
			ll.WithField("account", id.Hex()).Warn("account failed, restarting receiver")
			m.restarter.Restart(ctx, id)
		case Degraded:
			ll.WithField("account", id.Hex()).Debug("account degraded")
		}
	}
}

// Snapshot returns the most recently observed status per account.
func (m *Monitor) Snapshot() map[bson.ObjectID]Status {
	m.mut.Lock()
	defer m.mut.Unlock()
	out := make(map[bson.ObjectID]Status, len(m.snapshots))
	for id, s := range m.snapshots {
		out[id] = s
	}
	return out
}

func (m *Monitor) getLogger(fn string) *logrus.Entry {
	return log.GetLogger(log.HealthModule).WithField("tenant", m.tenantID.Hex()).WithField("func", fmt.Sprintf("%T.%s", m, fn))
}
