package repo

import (
	"context"
	"strings"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type watchUserHooks struct {
	NopHooks[types.WatchUserDoc]
	coll         mngo.ICollection[types.WatchUserDoc]
	groups       *GroupRepo
	destinations *DestinationRepo
}

func (h watchUserHooks) PreCreate(ctx context.Context, doc *types.WatchUserDoc) error {
	doc.Username = strings.ToLower(strings.TrimSpace(doc.Username))
	c, err := h.coll.Finder().Filter(bson.D{
		{Key: types.WatchUserDoc__TenantIDField, Value: doc.TenantID},
		{Key: types.WatchUserDoc__UsernameField, Value: doc.Username},
	}).Count(ctx)
	if err != nil {
		return errs.WrapStoreUnavailable(err, "uniqueness check failed")
	}
	if c > 0 {
		return errs.NewConflict("username already on the watchlist for this tenant")
	}
	return h.checkReferences(ctx, doc)
}

func (h watchUserHooks) PreUpdate(ctx context.Context, doc *types.WatchUserDoc) error {
	return h.checkReferences(ctx, doc)
}

// checkReferences enforces the §3 referential invariant: group_ids and
// forwarding_destination_ids must each be a subset of the tenant's active
// Groups/Destinations.
func (h watchUserHooks) checkReferences(ctx context.Context, doc *types.WatchUserDoc) error {
	if len(doc.GroupIDs) > 0 {
		active, err := h.groups.ActiveIDs(ctx, doc.TenantID)
		if err != nil {
			return err
		}
		for _, id := range doc.GroupIDs {
			if !active[id] {
				return errs.NewValidation("group_ids must reference active groups")
			}
		}
	}
	if len(doc.ForwardingDestinationIDs) > 0 {
		active, err := h.destinations.ActiveIDs(ctx, doc.TenantID)
		if err != nil {
			return err
		}
		for _, id := range doc.ForwardingDestinationIDs {
			if !active[id] {
				return errs.NewValidation("forwarding_destination_ids must reference active destinations")
			}
		}
	}
	return nil
}

type WatchUserRepo struct{ *Repo[types.WatchUserDoc] }

func NewWatchUserRepo(c mngo.ICollection[types.WatchUserDoc], groups *GroupRepo, destinations *DestinationRepo) *WatchUserRepo {
	return &WatchUserRepo{New(c, watchUserHooks{coll: c, groups: groups, destinations: destinations}, "watch_user")}
}

func (r *WatchUserRepo) Get(ctx context.Context, tenantID, id bson.ObjectID) (*types.WatchUserDoc, error) {
	return r.FindOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: types.WatchUserDoc__TenantIDField, Value: tenantID},
	})
}

func (r *WatchUserRepo) List(ctx context.Context, tenantID bson.ObjectID, includeInactive bool) ([]*types.WatchUserDoc, error) {
	filter := bson.D{{Key: types.WatchUserDoc__TenantIDField, Value: tenantID}}
	if !includeInactive {
		filter = append(filter, bson.E{Key: types.WatchUserDoc__IsActiveField, Value: true})
	}
	return r.Find(ctx, filter)
}

func (r *WatchUserRepo) SoftDelete(ctx context.Context, tenantID, id bson.ObjectID) error {
	w, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	w.IsActive = false
	_, err = r.Update(ctx, id, w)
	return err
}

// ByUsername returns active watch users matching a normalized username,
// the entry point for the filter pipeline's step 1.
func (r *WatchUserRepo) ByUsername(ctx context.Context, tenantID bson.ObjectID, username string) ([]*types.WatchUserDoc, error) {
	return r.Find(ctx, bson.D{
		{Key: types.WatchUserDoc__TenantIDField, Value: tenantID},
		{Key: types.WatchUserDoc__UsernameField, Value: strings.ToLower(strings.TrimSpace(username))},
		{Key: types.WatchUserDoc__IsActiveField, Value: true},
	})
}
