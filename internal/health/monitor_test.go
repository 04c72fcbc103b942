package health_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/health"
)

func TestClassifyDisconnectedBelowThresholdIsDegraded(t *testing.T) {
	g := NewWithT(t)
	status := health.Classify(health.Signal{Connected: false, ReconnectCountInWindow: 1})
	g.Expect(status).To(Equal(health.Degraded))
}

func TestClassifyDisconnectedAtThresholdIsFailed(t *testing.T) {
	g := NewWithT(t)
	status := health.Classify(health.Signal{Connected: false, ReconnectCountInWindow: 3})
	g.Expect(status).To(Equal(health.Failed))
}

func TestClassifyConnectedButStaleIsDegraded(t *testing.T) {
	g := NewWithT(t)
	status := health.Classify(health.Signal{Connected: true, LastEventAge: 3 * time.Minute})
	g.Expect(status).To(Equal(health.Degraded))
}

func TestClassifyConnectedAndFreshIsHealthy(t *testing.T) {
	g := NewWithT(t)
	status := health.Classify(health.Signal{Connected: true, LastEventAge: time.Second})
	g.Expect(status).To(Equal(health.Healthy))
}

type fakeSource struct {
	mu      sync.Mutex
	signals map[bson.ObjectID]health.Signal
}

func (f *fakeSource) Signal(accountID bson.ObjectID) (health.Signal, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sig, ok := f.signals[accountID]
	return sig, ok
}

func (f *fakeSource) set(id bson.ObjectID, sig health.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signals == nil {
		f.signals = map[bson.ObjectID]health.Signal{}
	}
	f.signals[id] = sig
}

type fakeRestarter struct {
	mu       sync.Mutex
	restarts []bson.ObjectID
}

func (f *fakeRestarter) Restart(ctx context.Context, accountID bson.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts = append(f.restarts, accountID)
}

func TestMonitorRunRestartsFailedAccountsOnTick(t *testing.T) {
	g := NewWithT(t)
	accountID := bson.NewObjectID()
	source := &fakeSource{}
	source.set(accountID, health.Signal{Connected: false, ReconnectCountInWindow: 5})
	restarter := &fakeRestarter{}

	m := health.NewMonitor(bson.NewObjectID(), 5*time.Millisecond, source, restarter)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	m.Run(ctx, func() []bson.ObjectID { return []bson.ObjectID{accountID} })

	restarter.mu.Lock()
	defer restarter.mu.Unlock()
	g.Expect(restarter.restarts).NotTo(BeEmpty())
	g.Expect(m.Snapshot()[accountID]).To(Equal(health.Failed))
}

func TestMonitorRunSkipsAccountsWithNoSignal(t *testing.T) {
	g := NewWithT(t)
	accountID := bson.NewObjectID()
	source := &fakeSource{}
	restarter := &fakeRestarter{}

	m := health.NewMonitor(bson.NewObjectID(), 5*time.Millisecond, source, restarter)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	m.Run(ctx, func() []bson.ObjectID { return []bson.ObjectID{accountID} })

	g.Expect(m.Snapshot()).To(BeEmpty())
}
