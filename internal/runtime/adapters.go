// Package runtime wires the repo layer to the filter pipeline, forwarding
// engine, bot router and session supervisor so cmd/serve.go only has to
// build a Manager, not every collaborator interface by hand.
package runtime

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/bot"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/forward"
	"github.com/tgwatch/tgwatch/internal/pipeline"
	"github.com/tgwatch/tgwatch/internal/repo"
	"github.com/tgwatch/tgwatch/internal/types"
)

// pipelineRepoAdapter adapts repo.Container to pipeline.GroupLookup,
// pipeline.WatchUserLookup and pipeline.Archiver.
type pipelineRepoAdapter struct {
	repos *repo.Container
}

func (a *pipelineRepoAdapter) ActiveGroupByExternalID(ctx context.Context, tenantID bson.ObjectID, externalID string) (*types.GroupDoc, error) {
	return a.repos.Groups.ByExternalID(ctx, tenantID, externalID)
}

func (a *pipelineRepoAdapter) ActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) ([]types.WatchUserDoc, error) {
	docs, err := a.repos.WatchUsers.List(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	return derefAll(docs), nil
}

func (a *pipelineRepoAdapter) ArchiveIdempotent(ctx context.Context, doc *types.MessageLogDoc) (bool, error) {
	_, inserted, err := a.repos.MessageLogs.Archive(ctx, doc)
	return inserted, err
}

// forwardRepoAdapter adapts repo.Container to forward.DestinationLookup and
// forward.Ledger.
type forwardRepoAdapter struct {
	repos *repo.Container
}

func (a *forwardRepoAdapter) ActiveDestination(ctx context.Context, tenantID, destinationID bson.ObjectID) (*types.DestinationDoc, error) {
	dest, err := a.repos.Destinations.Get(ctx, tenantID, destinationID)
	if err != nil {
		if errs.Is(err, errs.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !dest.IsActive {
		return nil, nil
	}
	return dest, nil
}

func (a *forwardRepoAdapter) RecordDelivery(ctx context.Context, row types.ForwardedMessageDoc) error {
	_, err := a.repos.ForwardedMessages.Create(ctx, &row)
	return err
}

func (a *forwardRepoAdapter) IncrementMessageCount(ctx context.Context, destinationID bson.ObjectID) error {
	dest, err := a.repos.Destinations.FindOne(ctx, bson.D{{Key: "_id", Value: destinationID}})
	if err != nil {
		return err
	}
	return a.repos.Destinations.RecordDelivery(ctx, dest.TenantID, destinationID, time.Now().UTC())
}

// botRepoAdapter adapts repo.Container (plus the filter pipeline, for
// webhook-originated messages) to every collaborator interface bot.Router
// needs.
type botRepoAdapter struct {
	repos    *repo.Container
	pipeline *pipeline.Pipeline
}

func (a *botRepoAdapter) ByTelegramID(ctx context.Context, telegramID int64) (*types.UserDoc, error) {
	user, err := a.repos.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errs.Is(err, errs.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (a *botRepoAdapter) CountActiveGroups(ctx context.Context, tenantID bson.ObjectID) (int64, error) {
	groups, err := a.repos.Groups.List(ctx, tenantID, false)
	if err != nil {
		return 0, err
	}
	return int64(len(groups)), nil
}

func (a *botRepoAdapter) CountActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) (int64, error) {
	users, err := a.repos.WatchUsers.List(ctx, tenantID, false)
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}

func (a *botRepoAdapter) CountMessages(ctx context.Context, tenantID bson.ObjectID) (int64, error) {
	return a.repos.MessageLogs.Collection().Finder().Filter(bson.D{
		{Key: types.MessageLogDoc__TenantIDField, Value: tenantID},
	}).Count(ctx)
}

func (a *botRepoAdapter) ActiveGroups(ctx context.Context, tenantID bson.ObjectID) ([]types.GroupDoc, error) {
	groups, err := a.repos.Groups.List(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	return derefAll(groups), nil
}

func (a *botRepoAdapter) ActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) ([]types.WatchUserDoc, error) {
	users, err := a.repos.WatchUsers.List(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	return derefAll(users), nil
}

func (a *botRepoAdapter) RecentMessages(ctx context.Context, tenantID bson.ObjectID, limit int) ([]types.MessageLogDoc, error) {
	docs, err := a.repos.MessageLogs.List(ctx, tenantID, repo.ListFilter{Limit: int64(limit)})
	if err != nil {
		return nil, err
	}
	return derefAll(docs), nil
}

func (a *botRepoAdapter) RecordCommand(ctx context.Context, row types.BotCommandDoc) error {
	_, err := a.repos.BotCommands.Create(ctx, &row)
	return err
}

// IngestWebhookMessage feeds a bot-webhook-originated group message into the
// same filter pipeline a session receiver uses, tagging ingested_via
// accordingly.
func (a *botRepoAdapter) IngestWebhookMessage(ctx context.Context, tenantID bson.ObjectID, msg bot.Message) error {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	messageType, mediaInfo := classifyWebhookMessage(msg)
	return a.pipeline.Ingest(ctx, pipeline.RawEvent{
		TenantID:    tenantID,
		GroupExtID:  fmt.Sprintf("%d", msg.Chat.ID),
		UserID:      msg.From.ID,
		Username:    msg.From.Username,
		FullName:    msg.From.FirstName + " " + msg.From.LastName,
		MessageID:   msg.MessageID,
		Text:        text,
		MessageType: messageType,
		MediaInfo:   mediaInfo,
		IngestedVia: types.IngestedViaWebhook,
		At:          time.Unix(msg.Date, 0).UTC(),
	})
}

// classifyWebhookMessage mirrors the original server's handle_telegram_message
// dispatch: the first populated media field wins, largest photo size last.
func classifyWebhookMessage(msg bot.Message) (types.MessageType, map[string]any) {
	switch {
	case len(msg.Photo) > 0:
		p := msg.Photo[len(msg.Photo)-1]
		return types.MessageTypePhoto, map[string]any{"file_id": p.FileID, "file_size": p.FileSize}
	case msg.Video != nil:
		return types.MessageTypeVideo, map[string]any{"file_id": msg.Video.FileID, "file_size": msg.Video.FileSize, "duration": msg.Video.Duration}
	case msg.Document != nil:
		return types.MessageTypeDocument, map[string]any{"file_id": msg.Document.FileID, "file_name": msg.Document.FileName, "file_size": msg.Document.FileSize}
	case msg.Audio != nil:
		return types.MessageTypeAudio, map[string]any{"file_id": msg.Audio.FileID, "duration": msg.Audio.Duration}
	case msg.Voice != nil:
		return types.MessageTypeVoice, map[string]any{"file_id": msg.Voice.FileID, "duration": msg.Voice.Duration}
	case msg.Sticker != nil:
		return types.MessageTypeSticker, map[string]any{"file_id": msg.Sticker.FileID, "emoji": msg.Sticker.Emoji}
	default:
		return types.MessageTypeText, nil
	}
}

func derefAll[T any](in []*T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = *v
	}
	return out
}

// NewPipeline wires repos and forward into a filter pipeline shared by
// every tenant's session receivers and the webhook ingestion path.
func NewPipeline(repos *repo.Container, forwarder pipeline.Forwarder) *pipeline.Pipeline {
	adapter := &pipelineRepoAdapter{repos: repos}
	return &pipeline.Pipeline{
		Groups:     adapter,
		WatchUsers: adapter,
		Archive:    adapter,
		Forward:    forwarder,
	}
}

// ForwardCollaborators returns the DestinationLookup/Ledger pair
// forward.NewEngine needs, both backed by repos.
func ForwardCollaborators(repos *repo.Container) (forward.DestinationLookup, forward.Ledger) {
	adapter := &forwardRepoAdapter{repos: repos}
	return adapter, adapter
}

// NewBotRouter wires repos and the shared pipeline into every collaborator
// interface bot.Router needs, plus the sender and audit log.
func NewBotRouter(repos *repo.Container, p *pipeline.Pipeline, sender bot.Sender) *bot.Router {
	adapter := &botRepoAdapter{repos: repos, pipeline: p}
	return &bot.Router{
		Tenants:    adapter,
		Counters:   adapter,
		Groups:     adapter,
		WatchUsers: adapter,
		Messages:   adapter,
		Audit:      adapter,
		Sender:     sender,
		Ingester:   adapter,
	}
}
