// Package pipeline turns one raw incoming message into an archive write and
// zero or more forward jobs, per the tenant's watch criteria.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/log"
	"github.com/tgwatch/tgwatch/internal/types"
)

// RawEvent is what a session receiver or the bot webhook hands the pipeline,
// independent of how it was ingested.
type RawEvent struct {
	TenantID     bson.ObjectID
	GroupExtID   string
	UserID       int64
	Username     string
	FullName     string
	MessageID    int64
	Text         string
	MessageType  types.MessageType
	MediaInfo    map[string]any
	IngestedVia  types.IngestedVia
	At           time.Time
}

type GroupLookup interface {
	ActiveGroupByExternalID(ctx context.Context, tenantID bson.ObjectID, externalID string) (*types.GroupDoc, error)
}

type WatchUserLookup interface {
	ActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) ([]types.WatchUserDoc, error)
}

// Archiver persists the archive row, returning inserted=false when the row
// already existed for (tenant_id, group_id, message_id).
type Archiver interface {
	ArchiveIdempotent(ctx context.Context, doc *types.MessageLogDoc) (inserted bool, err error)
}

// ForwardJob is a fan-out request for one matched message.
type ForwardJob struct {
	TenantID       bson.ObjectID
	DestinationIDs []bson.ObjectID
	MessageLog     types.MessageLogDoc
}

type Forwarder interface {
	Enqueue(ctx context.Context, job ForwardJob) error
}

// Pipeline wires lookup, archive and forward collaborators behind the
// filter logic in match.go.
type Pipeline struct {
	Groups     GroupLookup
	WatchUsers WatchUserLookup
	Archive    Archiver
	Forward    Forwarder
}

// Ingest filters, archives and forwards one event. It never returns an
// error for "not monitored" outcomes, only for lookup/archive failures; a
// failed archive write means no forward is ever emitted for that event. A
// failed forward enqueue is logged and not returned.
func (p *Pipeline) Ingest(ctx context.Context, ev RawEvent) error {
	ll := log.GetLogger(log.PipelineModule).WithField("tenant", ev.TenantID.Hex())

	group, err := p.Groups.ActiveGroupByExternalID(ctx, ev.TenantID, ev.GroupExtID)
	if err != nil {
		return fmt.Errorf("looking up group: %w", err)
	}
	if group == nil {
		return nil
	}

	users, err := p.WatchUsers.ActiveWatchUsers(ctx, ev.TenantID)
	if err != nil {
		return fmt.Errorf("listing watch users: %w", err)
	}
	monitored := MatchUser(users, ev.UserID, ev.Username, group.ID)
	if monitored == nil {
		return nil
	}

	var matchedKeywords []string
	if len(monitored.Keywords) > 0 {
		matchedKeywords = MatchKeywords(ev.Text, monitored.Keywords)
		if len(matchedKeywords) == 0 {
			return nil
		}
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	logDoc := types.MessageLogDoc{
		TenantID:        ev.TenantID,
		GroupID:         group.ID,
		GroupName:       group.GroupName,
		UserID:          ev.UserID,
		Username:        ev.Username,
		MessageID:       ev.MessageID,
		MessageText:     ev.Text,
		MessageType:     ev.MessageType,
		MediaInfo:       ev.MediaInfo,
		MatchedKeywords: matchedKeywords,
		Timestamp:       at,
		IngestedVia:     ev.IngestedVia,
	}
	inserted, err := p.Archive.ArchiveIdempotent(ctx, &logDoc)
	if err != nil {
		return errs.WrapInternal(err, "archiving message")
	}
	if !inserted {
		ll.WithField("message_id", ev.MessageID).Debug("duplicate receive, archive already has this message")
		return nil
	}

	if len(monitored.ForwardingDestinationIDs) == 0 {
		return nil
	}
	job := ForwardJob{
		TenantID:       ev.TenantID,
		DestinationIDs: monitored.ForwardingDestinationIDs,
		MessageLog:     logDoc,
	}
	if err := p.Forward.Enqueue(ctx, job); err != nil {
		ll.WithError(err).Error("could not enqueue forward job")
		return nil
	}
	return nil
}
