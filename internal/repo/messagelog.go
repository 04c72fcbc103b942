package repo

import (
	"context"
	"regexp"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type MessageLogRepo struct{ *Repo[types.MessageLogDoc] }

func NewMessageLogRepo(c mngo.ICollection[types.MessageLogDoc]) *MessageLogRepo {
	return &MessageLogRepo{New(c, NopHooks[types.MessageLogDoc]{}, "message_log")}
}

// Archive inserts a MessageLog row, translating a duplicate-key conflict
// into the pipeline's idempotent-skip signal rather than an error: a
// duplicate is an expected outcome of re-delivery, not a fault.
func (r *MessageLogRepo) Archive(ctx context.Context, doc *types.MessageLogDoc) (*types.MessageLogDoc, bool, error) {
	created, err := r.Create(ctx, doc)
	if err != nil {
		if IsConflict(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return created, true, nil
}

type ListFilter struct {
	GroupID     *bson.ObjectID
	MessageType *types.MessageType
	Limit       int64
	Skip        int64
}

func (r *MessageLogRepo) List(ctx context.Context, tenantID bson.ObjectID, f ListFilter) ([]*types.MessageLogDoc, error) {
	filter := bson.D{{Key: types.MessageLogDoc__TenantIDField, Value: tenantID}}
	if f.GroupID != nil {
		filter = append(filter, bson.E{Key: types.MessageLogDoc__GroupIDField, Value: *f.GroupID})
	}
	if f.MessageType != nil {
		filter = append(filter, bson.E{Key: "MessageType", Value: *f.MessageType})
	}
	finder := r.Collection().Finder().Filter(filter)
	if f.Skip > 0 {
		finder = finder.Skip(f.Skip)
	}
	if f.Limit > 0 {
		finder = finder.Limit(f.Limit)
	}
	docs, err := finder.Find(ctx)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Search scans text/username/group_name with a case-insensitive
// substring/regex match, the only text-search capability offered.
func (r *MessageLogRepo) Search(ctx context.Context, tenantID bson.ObjectID, q string) ([]*types.MessageLogDoc, error) {
	pattern := regexp.QuoteMeta(q)
	rx := bson.Regex{Pattern: pattern, Options: "i"}
	filter := bson.D{
		{Key: types.MessageLogDoc__TenantIDField, Value: tenantID},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "MessageText", Value: rx}},
			bson.D{{Key: "Username", Value: rx}},
			bson.D{{Key: "GroupName", Value: rx}},
		}},
	}
	return r.Find(ctx, filter)
}
