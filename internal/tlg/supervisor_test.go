package tlg

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
)

type fakeSink struct {
	mu    sync.Mutex
	calls []types.AccountStatus
}

func (f *fakeSink) SetStatus(ctx context.Context, accountID bson.ObjectID, status types.AccountStatus, lastErr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, status)
}

func (f *fakeSink) last() types.AccountStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func TestSupervisorEscalatesImmediatelyOnArtifactInvalid(t *testing.T) {
	g := NewWithT(t)
	sink := &fakeSink{}
	factory := func(account types.AccountDoc, onMsg MessageHandler) (IClient, error) {
		return nil, errs.NewArtifactInvalid("bad session")
	}
	sup := NewSupervisor(bson.NewObjectID(), factory, sink, nil)
	account := types.AccountDoc{}
	account.ID = bson.NewObjectID()

	g.Expect(sup.Start(context.Background(), account)).NotTo(HaveOccurred())
	g.Eventually(sink.last).Should(Equal(types.AccountError))
	sup.Stop(account.ID)

	g.Expect(sink.last()).To(Equal(types.AccountError))
	g.Expect(sup.Running()).To(BeEmpty())
}

func TestSupervisorStartTwiceForSameAccountIsANoop(t *testing.T) {
	g := NewWithT(t)
	sink := &fakeSink{}
	factory := func(account types.AccountDoc, onMsg MessageHandler) (IClient, error) {
		return nil, errs.NewArtifactInvalid("bad session")
	}
	sup := NewSupervisor(bson.NewObjectID(), factory, sink, nil)
	account := types.AccountDoc{}
	account.ID = bson.NewObjectID()

	g.Expect(sup.Start(context.Background(), account)).NotTo(HaveOccurred())
	g.Expect(sup.Start(context.Background(), account)).NotTo(HaveOccurred())

	sup.Stop(account.ID)
}

func TestSupervisorStopOnUnknownAccountIsANoop(t *testing.T) {
	g := NewWithT(t)
	sup := NewSupervisor(bson.NewObjectID(), nil, &fakeSink{}, nil)
	g.Expect(func() { sup.Stop(bson.NewObjectID()) }).NotTo(Panic())
}

func TestSupervisorRunningTracksAccountsUntilExplicitlyStopped(t *testing.T) {
	g := NewWithT(t)
	release := make(chan struct{})
	factory := func(account types.AccountDoc, onMsg MessageHandler) (IClient, error) {
		<-release
		return nil, errs.NewArtifactInvalid("bad session")
	}
	sup := NewSupervisor(bson.NewObjectID(), factory, &fakeSink{}, nil)
	account := types.AccountDoc{}
	account.ID = bson.NewObjectID()

	g.Expect(sup.Start(context.Background(), account)).NotTo(HaveOccurred())
	g.Expect(sup.Running()).To(ConsistOf(account.ID))

	close(release)
	// run()'s goroutine exits once the receiver fails, but the worker
	// stays under supervision (and in Running) until Stop is called.
	time.Sleep(20 * time.Millisecond)
	g.Expect(sup.Running()).To(ConsistOf(account.ID))

	sup.Stop(account.ID)
	g.Expect(sup.Running()).To(BeEmpty())
}
