package runtime

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/bot"
	"github.com/tgwatch/tgwatch/internal/pipeline"
	"github.com/tgwatch/tgwatch/internal/types"
)

type fakeGroupLookup struct{ group *types.GroupDoc }

func (f *fakeGroupLookup) ActiveGroupByExternalID(ctx context.Context, tenantID bson.ObjectID, externalID string) (*types.GroupDoc, error) {
	return f.group, nil
}

type fakeWatchUserLookup struct{ users []types.WatchUserDoc }

func (f *fakeWatchUserLookup) ActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) ([]types.WatchUserDoc, error) {
	return f.users, nil
}

type fakeArchiver struct{ archived int }

func (f *fakeArchiver) ArchiveIdempotent(ctx context.Context, doc *types.MessageLogDoc) (bool, error) {
	f.archived++
	return true, nil
}

type fakeForwarder struct{ jobs []pipeline.ForwardJob }

func (f *fakeForwarder) Enqueue(ctx context.Context, job pipeline.ForwardJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func TestIngestWebhookMessageTranslatesAndFeedsThePipeline(t *testing.T) {
	g := NewWithT(t)
	group := &types.GroupDoc{GroupName: "ops"}
	group.ID = bson.NewObjectID()
	archive := &fakeArchiver{}
	p := &pipeline.Pipeline{
		Groups:     &fakeGroupLookup{group: group},
		WatchUsers: &fakeWatchUserLookup{users: []types.WatchUserDoc{{Username: "alice", IsActive: true}}},
		Archive:    archive,
		Forward:    &fakeForwarder{},
	}
	adapter := &botRepoAdapter{pipeline: p}
	tenantID := bson.NewObjectID()

	err := adapter.IngestWebhookMessage(context.Background(), tenantID, bot.Message{
		Chat:      bot.Chat{ID: 42},
		From:      bot.User{ID: 1, Username: "alice", FirstName: "Alice"},
		MessageID: 7,
		Text:      "hello from the webhook",
		Date:      1700000000,
	})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(archive.archived).To(Equal(1))
}

func TestClassifyWebhookMessagePicksLargestPhotoSize(t *testing.T) {
	g := NewWithT(t)
	msgType, info := classifyWebhookMessage(bot.Message{
		Photo: []bot.PhotoSize{{FileID: "small", FileSize: 100}, {FileID: "large", FileSize: 9000}},
	})
	g.Expect(msgType).To(Equal(types.MessageTypePhoto))
	g.Expect(info).To(HaveKeyWithValue("file_id", "large"))
	g.Expect(info).To(HaveKeyWithValue("file_size", int64(9000)))
}

func TestClassifyWebhookMessageDistinguishesVoiceFromAudio(t *testing.T) {
	g := NewWithT(t)
	msgType, info := classifyWebhookMessage(bot.Message{Voice: &bot.Voice{FileID: "v1", Duration: 5}})
	g.Expect(msgType).To(Equal(types.MessageTypeVoice))
	g.Expect(info).To(HaveKeyWithValue("duration", int64(5)))
}

func TestClassifyWebhookMessageWithoutMediaIsText(t *testing.T) {
	g := NewWithT(t)
	msgType, info := classifyWebhookMessage(bot.Message{Text: "hello"})
	g.Expect(msgType).To(Equal(types.MessageTypeText))
	g.Expect(info).To(BeNil())
}

func TestIngestWebhookMessagePopulatesMediaInfoFromDocument(t *testing.T) {
	g := NewWithT(t)
	group := &types.GroupDoc{GroupName: "ops"}
	group.ID = bson.NewObjectID()
	archive := &fakeArchiver{}
	var captured []types.MessageLogDoc
	forwarder := &fakeForwarder{}
	p := &pipeline.Pipeline{
		Groups:     &fakeGroupLookup{group: group},
		WatchUsers: &fakeWatchUserLookup{users: []types.WatchUserDoc{{Username: "alice", IsActive: true}}},
		Archive:    &capturingArchiver{fakeArchiver: archive, captured: &captured},
		Forward:    forwarder,
	}
	adapter := &botRepoAdapter{pipeline: p}

	err := adapter.IngestWebhookMessage(context.Background(), bson.NewObjectID(), bot.Message{
		Chat:      bot.Chat{ID: 42},
		From:      bot.User{ID: 1, Username: "alice"},
		MessageID: 9,
		Document:  &bot.Document{FileID: "doc1", FileName: "report.pdf", FileSize: 2048},
	})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(captured).To(HaveLen(1))
	g.Expect(captured[0].MessageType).To(Equal(types.MessageTypeDocument))
	g.Expect(captured[0].MediaInfo).To(HaveKeyWithValue("file_name", "report.pdf"))
}

type capturingArchiver struct {
	*fakeArchiver
	captured *[]types.MessageLogDoc
}

func (c *capturingArchiver) ArchiveIdempotent(ctx context.Context, doc *types.MessageLogDoc) (bool, error) {
	*c.captured = append(*c.captured, *doc)
	return c.fakeArchiver.ArchiveIdempotent(ctx, doc)
}

func TestIngestWebhookMessageSkipsUnmonitoredGroup(t *testing.T) {
	g := NewWithT(t)
	archive := &fakeArchiver{}
	p := &pipeline.Pipeline{
		Groups:     &fakeGroupLookup{group: nil},
		WatchUsers: &fakeWatchUserLookup{},
		Archive:    archive,
		Forward:    &fakeForwarder{},
	}
	adapter := &botRepoAdapter{pipeline: p}

	err := adapter.IngestWebhookMessage(context.Background(), bson.NewObjectID(), bot.Message{
		Chat: bot.Chat{ID: 42},
		From: bot.User{ID: 1, Username: "bob"},
	})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(archive.archived).To(Equal(0))
}
