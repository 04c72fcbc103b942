// Package bot dispatches Telegram Bot API webhook updates: slash commands,
// inline-keyboard callback queries, and non-command group messages (an
// alternate ingestion path alongside the session-client receivers).
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/log"
	"github.com/tgwatch/tgwatch/internal/types"
)

// TenantLookup maps a Telegram user id to the tenant user account it
// belongs to; unknown ids get onboarding instructions and no data.
type TenantLookup interface {
	ByTelegramID(ctx context.Context, telegramID int64) (*types.UserDoc, error)
}

type Counters interface {
	CountActiveGroups(ctx context.Context, tenantID bson.ObjectID) (int64, error)
	CountActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) (int64, error)
	CountMessages(ctx context.Context, tenantID bson.ObjectID) (int64, error)
}

type GroupLister interface {
	ActiveGroups(ctx context.Context, tenantID bson.ObjectID) ([]types.GroupDoc, error)
}

type WatchUserLister interface {
	ActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) ([]types.WatchUserDoc, error)
}

type RecentMessageLister interface {
	RecentMessages(ctx context.Context, tenantID bson.ObjectID, limit int) ([]types.MessageLogDoc, error)
}

// AuditLogger persists one BotCommand row per received command or callback.
type AuditLogger interface {
	RecordCommand(ctx context.Context, row types.BotCommandDoc) error
}

type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// MessageIngester feeds a non-command webhook message into the filter
// pipeline, mirroring what a session receiver does for group events.
type MessageIngester interface {
	IngestWebhookMessage(ctx context.Context, tenantID bson.ObjectID, msg Message) error
}

type Router struct {
	Tenants      TenantLookup
	Counters     Counters
	Groups       GroupLister
	WatchUsers   WatchUserLister
	Messages     RecentMessageLister
	Audit        AuditLogger
	Sender       Sender
	Ingester     MessageIngester
}

// Handle dispatches one decoded webhook update.
func (r *Router) Handle(ctx context.Context, upd Update) error {
	switch {
	case upd.CallbackQuery != nil:
		return r.handleCallback(ctx, *upd.CallbackQuery)
	case upd.Message != nil:
		return r.handleMessage(ctx, *upd.Message)
	default:
		return nil
	}
}

func (r *Router) handleMessage(ctx context.Context, msg Message) error {
	if !strings.HasPrefix(msg.Text, "/") {
		if r.Ingester == nil {
			return nil
		}
		user, err := r.Tenants.ByTelegramID(ctx, msg.From.ID)
		if err != nil || user == nil {
			return nil
		}
		return r.Ingester.IngestWebhookMessage(ctx, user.TenantID, msg)
	}

	command, args := splitCommand(msg.Text)
	user, err := r.Tenants.ByTelegramID(ctx, msg.From.ID)
	if err != nil {
		return fmt.Errorf("looking up telegram user: %w", err)
	}
	if user == nil {
		return r.Sender.SendMessage(ctx, chatID(msg.Chat.ID), onboardingText())
	}

	r.audit(ctx, user.TenantID, msg.From.ID, command, args)

	text, err := r.render(ctx, user.TenantID, command)
	if err != nil {
		return err
	}
	return r.Sender.SendMessage(ctx, chatID(msg.Chat.ID), text)
}

func (r *Router) handleCallback(ctx context.Context, cb CallbackQuery) error {
	user, err := r.Tenants.ByTelegramID(ctx, cb.From.ID)
	if err != nil {
		return fmt.Errorf("looking up telegram user: %w", err)
	}
	if user == nil {
		return r.Sender.SendMessage(ctx, chatID(cb.Message.Chat.ID), onboardingText())
	}
	r.audit(ctx, user.TenantID, cb.From.ID, "callback:"+cb.Data, "")

	text, err := r.render(ctx, user.TenantID, "/"+cb.Data)
	if err != nil {
		return err
	}
	return r.Sender.SendMessage(ctx, chatID(cb.Message.Chat.ID), text)
}

func (r *Router) audit(ctx context.Context, tenantID bson.ObjectID, telegramUserID int64, command, args string) {
	row := types.BotCommandDoc{
		TenantID:       tenantID,
		TelegramUserID: telegramUserID,
		Command:        command,
		Args:           args,
		Timestamp:      time.Now().UTC(),
	}
	if err := r.Audit.RecordCommand(ctx, row); err != nil {
		log.GetLogger(log.BotModule).WithError(err).Warn("could not record bot command audit row")
	}
}

func splitCommand(text string) (command, args string) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	command = parts[0]
	if len(parts) > 1 {
		args = parts[1]
	}
	return command, args
}

func chatID(id int64) string { return fmt.Sprintf("%d", id) }

func onboardingText() string {
	return "Welcome. This bot is not yet linked to an account. Log into the dashboard and finish onboarding before using commands."
}
