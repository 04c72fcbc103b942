package bot_test

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/bot"
	"github.com/tgwatch/tgwatch/internal/types"
)

type fakeTenants struct{ usersByTg map[int64]*types.UserDoc }

func (f *fakeTenants) ByTelegramID(ctx context.Context, telegramID int64) (*types.UserDoc, error) {
	return f.usersByTg[telegramID], nil
}

type fakeCounters struct{}

func (fakeCounters) CountActiveGroups(ctx context.Context, tenantID bson.ObjectID) (int64, error)     { return 2, nil }
func (fakeCounters) CountActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) (int64, error) { return 3, nil }
func (fakeCounters) CountMessages(ctx context.Context, tenantID bson.ObjectID) (int64, error)         { return 40, nil }

type fakeGroupLister struct{}

func (fakeGroupLister) ActiveGroups(ctx context.Context, tenantID bson.ObjectID) ([]types.GroupDoc, error) {
	return nil, nil
}

type fakeWatchUserLister struct{}

func (fakeWatchUserLister) ActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) ([]types.WatchUserDoc, error) {
	return nil, nil
}

type fakeMessageLister struct{}

func (fakeMessageLister) RecentMessages(ctx context.Context, tenantID bson.ObjectID, limit int) ([]types.MessageLogDoc, error) {
	return nil, nil
}

type fakeAudit struct{ rows []types.BotCommandDoc }

func (f *fakeAudit) RecordCommand(ctx context.Context, row types.BotCommandDoc) error {
	f.rows = append(f.rows, row)
	return nil
}

type fakeSender struct{ sent []string }

func (f *fakeSender) SendMessage(ctx context.Context, chatID, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func newRouter(knownTelegramID int64, tenantID bson.ObjectID, audit *fakeAudit, sender *fakeSender) *bot.Router {
	return &bot.Router{
		Tenants:    &fakeTenants{usersByTg: map[int64]*types.UserDoc{knownTelegramID: {TenantID: tenantID}}},
		Counters:   fakeCounters{},
		Groups:     fakeGroupLister{},
		WatchUsers: fakeWatchUserLister{},
		Messages:   fakeMessageLister{},
		Audit:      audit,
		Sender:     sender,
	}
}

func TestHandleStartCommandReplies(t *testing.T) {
	g := NewWithT(t)
	tenantID := bson.NewObjectID()
	audit := &fakeAudit{}
	sender := &fakeSender{}
	r := newRouter(100, tenantID, audit, sender)

	err := r.Handle(context.Background(), bot.Update{Message: &bot.Message{Chat: bot.Chat{ID: 1}, From: bot.User{ID: 100}, Text: "/start"}})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sender.sent).To(HaveLen(1))
	g.Expect(audit.rows).To(HaveLen(1))
	g.Expect(audit.rows[0].Command).To(Equal("/start"))
}

func TestHandleUnknownTelegramUserGetsOnboarding(t *testing.T) {
	g := NewWithT(t)
	audit := &fakeAudit{}
	sender := &fakeSender{}
	r := newRouter(100, bson.NewObjectID(), audit, sender)

	err := r.Handle(context.Background(), bot.Update{Message: &bot.Message{Chat: bot.Chat{ID: 1}, From: bot.User{ID: 999}, Text: "/status"}})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sender.sent).To(HaveLen(1))
	g.Expect(audit.rows).To(BeEmpty())
}

func TestHandleCallbackQueryReusesCommandRendering(t *testing.T) {
	g := NewWithT(t)
	tenantID := bson.NewObjectID()
	audit := &fakeAudit{}
	sender := &fakeSender{}
	r := newRouter(100, tenantID, audit, sender)

	err := r.Handle(context.Background(), bot.Update{CallbackQuery: &bot.CallbackQuery{
		From:    bot.User{ID: 100},
		Message: bot.Message{Chat: bot.Chat{ID: 1}},
		Data:    "status",
	}})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sender.sent).To(HaveLen(1))
	g.Expect(audit.rows[0].Command).To(Equal("callback:status"))
}
