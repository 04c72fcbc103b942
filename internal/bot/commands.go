package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/forward"
	"github.com/tgwatch/tgwatch/internal/types"
)

const recentMessagesLimit = 10

// render produces the escaped MarkdownV2 body for command, shared between
// the slash-command and inline-keyboard-callback dispatch paths (the
// callback data values reuse the command names minus the leading slash).
func (r *Router) render(ctx context.Context, tenantID bson.ObjectID, command string) (string, error) {
	switch command {
	case "/start", "/main_menu":
		return startText(), nil
	case "/help", "/admin_menu":
		return helpText(), nil
	case "/menu":
		return menuText(), nil
	case "/status", "/settings":
		return r.statusText(ctx, tenantID)
	case "/groups":
		return r.groupsText(ctx, tenantID)
	case "/watchlist":
		return r.watchlistText(ctx, tenantID)
	case "/messages":
		return r.messagesText(ctx, tenantID)
	default:
		return "Unknown command. Use /help to see available commands.", nil
	}
}

func startText() string {
	return esc("Telegram Monitor Bot") + "\n\n" +
		esc("Available commands:") + "\n" +
		esc("/help - show available commands") + "\n" +
		esc("/status - show monitoring status") + "\n" +
		esc("/groups - list monitored groups") + "\n" +
		esc("/watchlist - show watchlist users") + "\n\n" +
		esc("Use the web dashboard for full management.")
}

func helpText() string {
	return esc("Available commands:") + "\n" +
		esc("/status - current monitoring status") + "\n" +
		esc("/groups - list all monitored groups") + "\n" +
		esc("/watchlist - show users being monitored") + "\n" +
		esc("/messages - recent archived messages") + "\n\n" +
		esc("Use the web dashboard for advanced management.")
}

func menuText() string {
	return esc("Main menu: /status /groups /watchlist /messages /settings /help")
}

func (r *Router) statusText(ctx context.Context, tenantID bson.ObjectID) (string, error) {
	groups, err := r.Counters.CountActiveGroups(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("counting groups: %w", err)
	}
	watchUsers, err := r.Counters.CountActiveWatchUsers(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("counting watch users: %w", err)
	}
	messages, err := r.Counters.CountMessages(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("counting messages: %w", err)
	}
	now := time.Now().UTC().Format("2006-01-02 15:04 UTC")
	return esc("Monitoring status") + "\n\n" +
		esc(fmt.Sprintf("Groups: %d", groups)) + "\n" +
		esc(fmt.Sprintf("Watchlist users: %d", watchUsers)) + "\n" +
		esc(fmt.Sprintf("Messages logged: %d", messages)) + "\n\n" +
		esc("Last updated: "+now), nil
}

func (r *Router) groupsText(ctx context.Context, tenantID bson.ObjectID) (string, error) {
	groups, err := r.Groups.ActiveGroups(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("listing groups: %w", err)
	}
	if len(groups) == 0 {
		return esc("Monitored groups") + "\n\n" + esc("No groups are currently being monitored."), nil
	}
	lines := make([]string, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, "- "+esc(g.GroupName)+" ("+esc(g.GroupID)+")")
	}
	return fmt.Sprintf("%s (%d)\n\n%s", esc("Monitored groups"), len(groups), strings.Join(lines, "\n")), nil
}

func (r *Router) watchlistText(ctx context.Context, tenantID bson.ObjectID) (string, error) {
	users, err := r.WatchUsers.ActiveWatchUsers(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("listing watch users: %w", err)
	}
	if len(users) == 0 {
		return esc("Watchlist users") + "\n\n" + esc("No users are currently being monitored."), nil
	}
	lines := make([]string, 0, len(users))
	for _, u := range users {
		scope := "global"
		if len(u.GroupIDs) > 0 {
			scope = fmt.Sprintf("%d groups", len(u.GroupIDs))
		}
		lines = append(lines, "- @"+esc(u.Username)+" ("+esc(scope)+")")
	}
	return fmt.Sprintf("%s (%d)\n\n%s", esc("Watchlist users"), len(users), strings.Join(lines, "\n")), nil
}

func (r *Router) messagesText(ctx context.Context, tenantID bson.ObjectID) (string, error) {
	msgs, err := r.Messages.RecentMessages(ctx, tenantID, recentMessagesLimit)
	if err != nil {
		return "", fmt.Errorf("listing recent messages: %w", err)
	}
	if len(msgs) == 0 {
		return esc("Recent messages") + "\n\n" + esc("No messages archived yet."), nil
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, "- @"+esc(m.Username)+" in "+esc(m.GroupName)+": "+esc(summarize(m)))
	}
	return fmt.Sprintf("%s\n\n%s", esc("Recent messages"), strings.Join(lines, "\n")), nil
}

func summarize(m types.MessageLogDoc) string {
	if m.MessageText != "" {
		if len(m.MessageText) > 60 {
			return m.MessageText[:60] + "..."
		}
		return m.MessageText
	}
	return "[" + string(m.MessageType) + "]"
}

func esc(s string) string { return forward.EscapeMarkdownV2(s) }
