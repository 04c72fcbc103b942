package repo

import (
	"context"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type groupHooks struct {
	NopHooks[types.GroupDoc]
	coll mngo.ICollection[types.GroupDoc]
}

// PreCreate enforces group_id uniqueness within the tenant.
func (h groupHooks) PreCreate(ctx context.Context, doc *types.GroupDoc) error {
	c, err := h.coll.Finder().Filter(bson.D{
		{Key: types.GroupDoc__TenantIDField, Value: doc.TenantID},
		{Key: types.GroupDoc__GroupIDField, Value: doc.GroupID},
	}).Count(ctx)
	if err != nil {
		return errs.WrapStoreUnavailable(err, "uniqueness check failed")
	}
	if c > 0 {
		return errs.NewConflict("group_id already registered for this tenant")
	}
	return nil
}

type GroupRepo struct{ *Repo[types.GroupDoc] }

func NewGroupRepo(c mngo.ICollection[types.GroupDoc]) *GroupRepo {
	return &GroupRepo{New(c, groupHooks{coll: c}, "group")}
}

func (r *GroupRepo) Get(ctx context.Context, tenantID, id bson.ObjectID) (*types.GroupDoc, error) {
	return r.FindOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: types.GroupDoc__TenantIDField, Value: tenantID},
	})
}

func (r *GroupRepo) List(ctx context.Context, tenantID bson.ObjectID, includeInactive bool) ([]*types.GroupDoc, error) {
	filter := bson.D{{Key: types.GroupDoc__TenantIDField, Value: tenantID}}
	if !includeInactive {
		filter = append(filter, bson.E{Key: types.GroupDoc__IsActiveField, Value: true})
	}
	return r.Find(ctx, filter)
}

// SoftDelete marks the group inactive instead of removing it, keeping
// ledgers readable.
func (r *GroupRepo) SoftDelete(ctx context.Context, tenantID, id bson.ObjectID) error {
	g, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	g.IsActive = false
	_, err = r.Update(ctx, id, g)
	return err
}

// ByExternalID looks up the active group matching a Telegram chat id, the
// filter pipeline's entry point for a raw incoming message.
func (r *GroupRepo) ByExternalID(ctx context.Context, tenantID bson.ObjectID, externalID string) (*types.GroupDoc, error) {
	groups, err := r.Find(ctx, bson.D{
		{Key: types.GroupDoc__TenantIDField, Value: tenantID},
		{Key: types.GroupDoc__GroupIDField, Value: externalID},
		{Key: types.GroupDoc__IsActiveField, Value: true},
	})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return groups[0], nil
}

// ActiveIDs returns the set of active group ids for a tenant, used by the
// referential checks on WatchUser/Account assignment.
func (r *GroupRepo) ActiveIDs(ctx context.Context, tenantID bson.ObjectID) (map[bson.ObjectID]bool, error) {
	groups, err := r.List(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	ids := make(map[bson.ObjectID]bool, len(groups))
	for _, g := range groups {
		ids[g.ID] = true
	}
	return ids, nil
}
