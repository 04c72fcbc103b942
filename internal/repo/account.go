package repo

import (
	"context"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type AccountRepo struct {
	*Repo[types.AccountDoc]
	groups *GroupRepo
}

func NewAccountRepo(c mngo.ICollection[types.AccountDoc], groups *GroupRepo) *AccountRepo {
	return &AccountRepo{Repo: New(c, NopHooks[types.AccountDoc]{}, "account"), groups: groups}
}

func (r *AccountRepo) Get(ctx context.Context, tenantID, id bson.ObjectID) (*types.AccountDoc, error) {
	return r.FindOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: types.AccountDoc__TenantIDField, Value: tenantID},
	})
}

func (r *AccountRepo) List(ctx context.Context, tenantID bson.ObjectID) ([]*types.AccountDoc, error) {
	return r.Find(ctx, bson.D{{Key: types.AccountDoc__TenantIDField, Value: tenantID}})
}

func (r *AccountRepo) ListActive(ctx context.Context, tenantID bson.ObjectID) ([]*types.AccountDoc, error) {
	return r.Find(ctx, bson.D{
		{Key: types.AccountDoc__TenantIDField, Value: tenantID},
		{Key: types.AccountDoc__StatusField, Value: types.AccountActive},
	})
}

// SetStatus updates status and, on an error transition, records last_error;
// success clears it.
func (r *AccountRepo) SetStatus(ctx context.Context, tenantID, id bson.ObjectID, status types.AccountStatus, lastErr string) (*types.AccountDoc, error) {
	a, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	a.Status = status
	a.LastError = lastErr
	return r.Update(ctx, id, a)
}

// SetAssignedGroups enforces the §3 referential invariant
// (assigned_group_ids ⊆ tenant's active Groups) before persisting the
// balancer's assignment.
func (r *AccountRepo) SetAssignedGroups(ctx context.Context, tenantID, id bson.ObjectID, groupIDs []bson.ObjectID) (*types.AccountDoc, error) {
	a, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if len(groupIDs) > 0 {
		active, err := r.groups.ActiveIDs(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		for _, gid := range groupIDs {
			if !active[gid] {
				return nil, errs.NewValidation("assigned_group_ids must reference active groups")
			}
		}
	}
	a.AssignedGroupIDs = groupIDs
	return r.Update(ctx, id, a)
}
