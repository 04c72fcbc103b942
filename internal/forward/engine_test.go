package forward_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/forward"
	"github.com/tgwatch/tgwatch/internal/pipeline"
	"github.com/tgwatch/tgwatch/internal/types"
)

type fakeDestinations struct {
	byID map[bson.ObjectID]*types.DestinationDoc
}

func (f *fakeDestinations) ActiveDestination(ctx context.Context, tenantID, destinationID bson.ObjectID) (*types.DestinationDoc, error) {
	return f.byID[destinationID], nil
}

type fakeLedger struct {
	mu       sync.Mutex
	rows     []types.ForwardedMessageDoc
	incByDst map[bson.ObjectID]int
}

func (f *fakeLedger) RecordDelivery(ctx context.Context, row types.ForwardedMessageDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeLedger) IncrementMessageCount(ctx context.Context, destinationID bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incByDst == nil {
		f.incByDst = map[bson.ObjectID]int{}
	}
	f.incByDst[destinationID]++
	return nil
}

func (f *fakeLedger) snapshot() []types.ForwardedMessageDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.ForwardedMessageDoc(nil), f.rows...)
}

type fakeSender struct {
	mu      sync.Mutex
	err     error
	chatIDs []string
}

func (f *fakeSender) SendMessage(ctx context.Context, destExtID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatIDs = append(f.chatIDs, destExtID)
	return f.err
}

func (f *fakeSender) sentChatIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.chatIDs...)
}

func waitForRows(t *testing.T, ledger *fakeLedger, n int) []types.ForwardedMessageDoc {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rows := ledger.snapshot(); len(rows) >= n {
			return rows
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d ledger rows", n)
	return nil
}

func TestEngineRecordsDeliveredOnSuccess(t *testing.T) {
	g := NewWithT(t)
	dest := bson.NewObjectID()
	destinations := &fakeDestinations{byID: map[bson.ObjectID]*types.DestinationDoc{dest: {DestinationID: "123"}}}
	ledger := &fakeLedger{}
	sender := &fakeSender{}
	engine := forward.NewEngine(destinations, ledger, sender)
	defer engine.Stop()

	err := engine.Enqueue(context.Background(), pipeline.ForwardJob{
		TenantID:       bson.NewObjectID(),
		DestinationIDs: []bson.ObjectID{dest},
		MessageLog:     types.MessageLogDoc{Username: "alice"},
	})
	g.Expect(err).NotTo(HaveOccurred())

	rows := waitForRows(t, ledger, 1)
	g.Expect(rows[0].Outcome).To(Equal(types.ForwardDelivered))
	g.Expect(sender.sentChatIDs()).To(ConsistOf("123"))
}

func TestEngineRecordsFailedOnInactiveDestination(t *testing.T) {
	g := NewWithT(t)
	dest := bson.NewObjectID()
	destinations := &fakeDestinations{byID: map[bson.ObjectID]*types.DestinationDoc{}}
	ledger := &fakeLedger{}
	engine := forward.NewEngine(destinations, ledger, &fakeSender{})
	defer engine.Stop()

	err := engine.Enqueue(context.Background(), pipeline.ForwardJob{
		TenantID:       bson.NewObjectID(),
		DestinationIDs: []bson.ObjectID{dest},
		MessageLog:     types.MessageLogDoc{Username: "bob"},
	})
	g.Expect(err).NotTo(HaveOccurred())

	rows := waitForRows(t, ledger, 1)
	g.Expect(rows[0].Outcome).To(Equal(types.ForwardFailed))
	g.Expect(rows[0].FailureReason).To(Equal("destination_inactive"))
}

func TestEngineRecordsFailedOnPermanentSendError(t *testing.T) {
	g := NewWithT(t)
	dest := bson.NewObjectID()
	destinations := &fakeDestinations{byID: map[bson.ObjectID]*types.DestinationDoc{dest: {DestinationID: "123"}}}
	ledger := &fakeLedger{}
	sender := &fakeSender{err: errs.WrapUpstreamPermanent(nil, "bot kicked")}
	engine := forward.NewEngine(destinations, ledger, sender)
	defer engine.Stop()

	err := engine.Enqueue(context.Background(), pipeline.ForwardJob{
		TenantID:       bson.NewObjectID(),
		DestinationIDs: []bson.ObjectID{dest},
		MessageLog:     types.MessageLogDoc{Username: "carol"},
	})
	g.Expect(err).NotTo(HaveOccurred())

	rows := waitForRows(t, ledger, 1)
	g.Expect(rows[0].Outcome).To(Equal(types.ForwardFailed))
}
