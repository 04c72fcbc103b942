package repo

import (
	"context"
	"time"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type destinationHooks struct {
	NopHooks[types.DestinationDoc]
	coll mngo.ICollection[types.DestinationDoc]
}

func (h destinationHooks) PreCreate(ctx context.Context, doc *types.DestinationDoc) error {
	c, err := h.coll.Finder().Filter(bson.D{
		{Key: types.DestinationDoc__TenantIDField, Value: doc.TenantID},
		{Key: types.DestinationDoc__DestinationIDField, Value: doc.DestinationID},
	}).Count(ctx)
	if err != nil {
		return errs.WrapStoreUnavailable(err, "uniqueness check failed")
	}
	if c > 0 {
		return errs.NewConflict("destination_id already registered for this tenant")
	}
	return nil
}

type DestinationRepo struct{ *Repo[types.DestinationDoc] }

func NewDestinationRepo(c mngo.ICollection[types.DestinationDoc]) *DestinationRepo {
	return &DestinationRepo{New(c, destinationHooks{coll: c}, "destination")}
}

func (r *DestinationRepo) Get(ctx context.Context, tenantID, id bson.ObjectID) (*types.DestinationDoc, error) {
	return r.FindOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: types.DestinationDoc__TenantIDField, Value: tenantID},
	})
}

func (r *DestinationRepo) List(ctx context.Context, tenantID bson.ObjectID, includeInactive bool) ([]*types.DestinationDoc, error) {
	filter := bson.D{{Key: types.DestinationDoc__TenantIDField, Value: tenantID}}
	if !includeInactive {
		filter = append(filter, bson.E{Key: types.DestinationDoc__IsActiveField, Value: true})
	}
	return r.Find(ctx, filter)
}

func (r *DestinationRepo) SoftDelete(ctx context.Context, tenantID, id bson.ObjectID) error {
	d, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	d.IsActive = false
	_, err = r.Update(ctx, id, d)
	return err
}

func (r *DestinationRepo) ActiveIDs(ctx context.Context, tenantID bson.ObjectID) (map[bson.ObjectID]bool, error) {
	dests, err := r.List(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	ids := make(map[bson.ObjectID]bool, len(dests))
	for _, d := range dests {
		ids[d.ID] = true
	}
	return ids, nil
}

// RecordDelivery increments message_count and last_forwarded on a
// successful delivery, keeping the cached counter recomputable from the
// forwarded-message ledger.
func (r *DestinationRepo) RecordDelivery(ctx context.Context, tenantID, id bson.ObjectID, at time.Time) error {
	d, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	d.MessageCount++
	d.LastForwarded = &at
	_, err = r.Update(ctx, id, d)
	return err
}
