package pipeline_test

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/pipeline"
	"github.com/tgwatch/tgwatch/internal/types"
)

type fakeGroups struct{ group *types.GroupDoc }

func (f *fakeGroups) ActiveGroupByExternalID(ctx context.Context, tenantID bson.ObjectID, externalID string) (*types.GroupDoc, error) {
	return f.group, nil
}

type fakeWatchUsers struct{ users []types.WatchUserDoc }

func (f *fakeWatchUsers) ActiveWatchUsers(ctx context.Context, tenantID bson.ObjectID) ([]types.WatchUserDoc, error) {
	return f.users, nil
}

type fakeArchive struct {
	seen     map[int64]bool
	lastDoc  *types.MessageLogDoc
	archived int
}

func (f *fakeArchive) ArchiveIdempotent(ctx context.Context, doc *types.MessageLogDoc) (bool, error) {
	if f.seen == nil {
		f.seen = map[int64]bool{}
	}
	if f.seen[doc.MessageID] {
		return false, nil
	}
	f.seen[doc.MessageID] = true
	f.lastDoc = doc
	f.archived++
	return true, nil
}

type fakeForward struct{ jobs []pipeline.ForwardJob }

func (f *fakeForward) Enqueue(ctx context.Context, job pipeline.ForwardJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func TestIngestSkipsUnmonitoredGroup(t *testing.T) {
	g := NewWithT(t)
	archive := &fakeArchive{}
	p := &pipeline.Pipeline{
		Groups:     &fakeGroups{group: nil},
		WatchUsers: &fakeWatchUsers{},
		Archive:    archive,
		Forward:    &fakeForward{},
	}

	err := p.Ingest(context.Background(), pipeline.RawEvent{GroupExtID: "123", Username: "alice"})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(archive.archived).To(Equal(0))
}

func TestIngestArchivesAndForwardsMonitoredUser(t *testing.T) {
	g := NewWithT(t)
	group := &types.GroupDoc{GroupName: "watchers"}
	group.ID = bson.NewObjectID()
	dest := bson.NewObjectID()
	archive := &fakeArchive{}
	forward := &fakeForward{}
	p := &pipeline.Pipeline{
		Groups: &fakeGroups{group: group},
		WatchUsers: &fakeWatchUsers{users: []types.WatchUserDoc{
			{Username: "alice", IsActive: true, ForwardingDestinationIDs: []bson.ObjectID{dest}},
		}},
		Archive: archive,
		Forward: forward,
	}

	err := p.Ingest(context.Background(), pipeline.RawEvent{GroupExtID: "123", Username: "alice", MessageID: 1, Text: "hello"})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(archive.archived).To(Equal(1))
	g.Expect(forward.jobs).To(HaveLen(1))
	g.Expect(forward.jobs[0].DestinationIDs).To(ConsistOf(dest))
}

func TestIngestRequiresKeywordMatch(t *testing.T) {
	g := NewWithT(t)
	group := &types.GroupDoc{}
	group.ID = bson.NewObjectID()
	archive := &fakeArchive{}
	forward := &fakeForward{}
	p := &pipeline.Pipeline{
		Groups: &fakeGroups{group: group},
		WatchUsers: &fakeWatchUsers{users: []types.WatchUserDoc{
			{Username: "alice", IsActive: true, Keywords: []string{"urgent"}},
		}},
		Archive: archive,
		Forward: forward,
	}

	err := p.Ingest(context.Background(), pipeline.RawEvent{GroupExtID: "123", Username: "alice", MessageID: 2, Text: "nothing interesting"})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(archive.archived).To(Equal(0))
}

func TestIngestIsIdempotentOnDuplicateMessageID(t *testing.T) {
	g := NewWithT(t)
	group := &types.GroupDoc{}
	group.ID = bson.NewObjectID()
	archive := &fakeArchive{}
	forward := &fakeForward{}
	p := &pipeline.Pipeline{
		Groups:     &fakeGroups{group: group},
		WatchUsers: &fakeWatchUsers{users: []types.WatchUserDoc{{Username: "alice", IsActive: true}}},
		Archive:    archive,
		Forward:    forward,
	}
	ev := pipeline.RawEvent{GroupExtID: "123", Username: "alice", MessageID: 3, Text: "hi"}

	g.Expect(p.Ingest(context.Background(), ev)).NotTo(HaveOccurred())
	g.Expect(p.Ingest(context.Background(), ev)).NotTo(HaveOccurred())

	g.Expect(archive.archived).To(Equal(1))
	g.Expect(forward.jobs).To(HaveLen(0))
}

func TestMatchKeywordsFallsBackToSubstringOnBadRegex(t *testing.T) {
	g := NewWithT(t)
	matched := pipeline.MatchKeywords("price is $5 (approx)", []string{"$5 ("})
	g.Expect(matched).To(ConsistOf("$5 ("))
}

func TestMatchKeywordsIsCaseInsensitive(t *testing.T) {
	g := NewWithT(t)
	matched := pipeline.MatchKeywords("URGENT notice", []string{"urgent"})
	g.Expect(matched).To(ConsistOf("urgent"))
}
