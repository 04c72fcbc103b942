// Package forward owns per-destination delivery queues, each rate-limited
// and retried independently, and records the terminal outcome of every
// delivery attempt to the forwarded-message ledger.
package forward

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/time/rate"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/log"
	"github.com/tgwatch/tgwatch/internal/pipeline"
	"github.com/tgwatch/tgwatch/internal/types"
)

const (
	defaultRateLimit  = 20
	defaultRateWindow = 60 * time.Second
	maxDeliveryAttempts = 5
	queueDepth          = 256
)

type DestinationLookup interface {
	ActiveDestination(ctx context.Context, tenantID, destinationID bson.ObjectID) (*types.DestinationDoc, error)
}

// Ledger records a terminal delivery outcome and keeps the destination's
// message_count in sync with its delivered rows.
type Ledger interface {
	RecordDelivery(ctx context.Context, row types.ForwardedMessageDoc) error
	IncrementMessageCount(ctx context.Context, destinationID bson.ObjectID) error
}

// Sender performs one delivery attempt to destExtID.
type Sender interface {
	SendMessage(ctx context.Context, destExtID, text string) error
}

type delivery struct {
	tenantID      bson.ObjectID
	destinationID bson.ObjectID
	destExtID     string
	messageLog    types.MessageLogDoc
}

type destQueue struct {
	limiter *rate.Limiter
	items   chan delivery
	cancel  context.CancelFunc
}

// Engine is the Forwarder the pipeline enqueues into: one FIFO queue per
// destination, single-writer (this package) / single-reader (that
// destination's delivery task), per the pipeline's shared-resource policy.
type Engine struct {
	destinations DestinationLookup
	ledger       Ledger
	sender       Sender

	mu     sync.Mutex
	queues map[bson.ObjectID]*destQueue
}

func NewEngine(destinations DestinationLookup, ledger Ledger, sender Sender) *Engine {
	return &Engine{
		destinations: destinations,
		ledger:       ledger,
		sender:       sender,
		queues:       map[bson.ObjectID]*destQueue{},
	}
}

// Enqueue fans job out across its destinations. An inactive or missing
// destination still yields a failed ledger row for audit completeness
// rather than being silently dropped.
func (e *Engine) Enqueue(ctx context.Context, job pipeline.ForwardJob) error {
	for _, destinationID := range job.DestinationIDs {
		dest, err := e.destinations.ActiveDestination(ctx, job.TenantID, destinationID)
		if err != nil {
			return fmt.Errorf("looking up destination %s: %w", destinationID.Hex(), err)
		}
		if dest == nil {
			e.recordFailure(ctx, job.TenantID, destinationID, job.MessageLog, "destination_inactive")
			continue
		}
		q := e.queueFor(ctx, destinationID)
		select {
		case q.items <- delivery{tenantID: job.TenantID, destinationID: destinationID, destExtID: dest.DestinationID, messageLog: job.MessageLog}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (e *Engine) queueFor(ctx context.Context, destinationID bson.ObjectID) *destQueue {
	e.mu.Lock()
	defer e.mu.Unlock()
	if q, ok := e.queues[destinationID]; ok {
		return q
	}
	qctx, cancel := context.WithCancel(ctx)
	q := &destQueue{
		limiter: rate.NewLimiter(rate.Limit(float64(defaultRateLimit)/defaultRateWindow.Seconds()), defaultRateLimit),
		items:   make(chan delivery, queueDepth),
		cancel:  cancel,
	}
	e.queues[destinationID] = q
	go e.drain(qctx, destinationID, q)
	return q
}

// Stop cancels every destination's delivery task.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, q := range e.queues {
		q.cancel()
	}
}

func (e *Engine) drain(ctx context.Context, destinationID bson.ObjectID, q *destQueue) {
	ll := log.GetLogger(log.ForwardModule).WithField("destination", destinationID.Hex())
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-q.items:
			if err := q.limiter.Wait(ctx); err != nil {
				return
			}
			e.deliver(ctx, ll, d)
		}
	}
}

func (e *Engine) deliver(ctx context.Context, ll *logrus.Entry, d delivery) {
	text := formatDelivery(d.messageLog)

	attempts := 0
	operation := func() error {
		attempts++
		err := e.sender.SendMessage(ctx, d.destExtID, text)
		if err != nil && errs.Is(err, errs.UpstreamTransient) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxDeliveryAttempts-1)
	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))

	if err == nil {
		e.recordSuccess(ctx, d)
		return
	}
	ll.WithError(err).WithField("attempts", attempts).Warn("delivery failed")
	e.recordFailure(ctx, d.tenantID, d.destinationID, d.messageLog, err.Error())
}

func (e *Engine) recordSuccess(ctx context.Context, d delivery) {
	row := types.ForwardedMessageDoc{
		TenantID:         d.tenantID,
		SourceMessageRef: d.messageLog.ID,
		Username:         d.messageLog.Username,
		GroupName:        d.messageLog.GroupName,
		DestinationID:    d.destinationID,
		ForwardedAt:      time.Now().UTC(),
		Outcome:          types.ForwardDelivered,
	}
	ll := log.GetLogger(log.ForwardModule)
	if err := e.ledger.RecordDelivery(ctx, row); err != nil {
		ll.WithError(err).Error("could not record delivery ledger row")
		return
	}
	if err := e.ledger.IncrementMessageCount(ctx, d.destinationID); err != nil {
		ll.WithError(err).Error("could not increment destination message count")
	}
}

func (e *Engine) recordFailure(ctx context.Context, tenantID, destinationID bson.ObjectID, logDoc types.MessageLogDoc, reason string) {
	row := types.ForwardedMessageDoc{
		TenantID:         tenantID,
		SourceMessageRef: logDoc.ID,
		Username:         logDoc.Username,
		GroupName:        logDoc.GroupName,
		DestinationID:    destinationID,
		ForwardedAt:      time.Now().UTC(),
		Outcome:          types.ForwardFailed,
		FailureReason:    reason,
	}
	if err := e.ledger.RecordDelivery(ctx, row); err != nil {
		log.GetLogger(log.ForwardModule).WithError(err).Error("could not record failure ledger row")
	}
}

func formatDelivery(logDoc types.MessageLogDoc) string {
	header := fmt.Sprintf("@%s in %s at %s", logDoc.Username, logDoc.GroupName, logDoc.Timestamp.Format(time.RFC3339))
	return EscapeMarkdownV2(header) + "\n" + EscapeMarkdownV2(logDoc.MessageText)
}
