package repo

import (
	"context"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ForwardedMessageRepo struct{ *Repo[types.ForwardedMessageDoc] }

func NewForwardedMessageRepo(c mngo.ICollection[types.ForwardedMessageDoc]) *ForwardedMessageRepo {
	return &ForwardedMessageRepo{New(c, NopHooks[types.ForwardedMessageDoc]{}, "forwarded_message")}
}

type ForwardedListFilter struct {
	Username      *string
	DestinationID *bson.ObjectID
}

func (r *ForwardedMessageRepo) List(ctx context.Context, tenantID bson.ObjectID, f ForwardedListFilter) ([]*types.ForwardedMessageDoc, error) {
	filter := bson.D{{Key: types.ForwardedMessageDoc__TenantIDField, Value: tenantID}}
	if f.Username != nil {
		filter = append(filter, bson.E{Key: "Username", Value: *f.Username})
	}
	if f.DestinationID != nil {
		filter = append(filter, bson.E{Key: types.ForwardedMessageDoc__DestinationIDField, Value: *f.DestinationID})
	}
	return r.Find(ctx, filter)
}

func (r *ForwardedMessageRepo) CountByOutcome(ctx context.Context, tenantID bson.ObjectID, outcome types.ForwardOutcome) (int64, error) {
	return r.Collection().Finder().Filter(bson.D{
		{Key: types.ForwardedMessageDoc__TenantIDField, Value: tenantID},
		{Key: "Outcome", Value: outcome},
	}).Count(ctx)
}
