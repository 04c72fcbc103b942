package repo

import (
	"context"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type userHooks struct {
	NopHooks[types.UserDoc]
	coll mngo.ICollection[types.UserDoc]
}

// PreCreate enforces telegram_id uniqueness globally, the sole identity key.
func (h userHooks) PreCreate(ctx context.Context, doc *types.UserDoc) error {
	c, err := h.coll.Finder().Filter(bson.D{{Key: types.UserDoc__TelegramIDField, Value: doc.TelegramID}}).Count(ctx)
	if err != nil {
		return errs.WrapStoreUnavailable(err, "uniqueness check failed")
	}
	if c > 0 {
		return errs.NewConflict("telegram_id already registered")
	}
	return nil
}

type UserRepo struct{ *Repo[types.UserDoc] }

func NewUserRepo(c mngo.ICollection[types.UserDoc]) *UserRepo {
	return &UserRepo{New(c, userHooks{coll: c}, "user")}
}

func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*types.UserDoc, error) {
	return r.FindOne(ctx, bson.D{{Key: types.UserDoc__TelegramIDField, Value: telegramID}})
}

func (r *UserRepo) Get(ctx context.Context, tenantID, id bson.ObjectID) (*types.UserDoc, error) {
	return r.FindOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: types.UserDoc__TenantIDField, Value: tenantID},
	})
}

func (r *UserRepo) ListByTenant(ctx context.Context, tenantID bson.ObjectID) ([]*types.UserDoc, error) {
	return r.Find(ctx, bson.D{{Key: types.UserDoc__TenantIDField, Value: tenantID}})
}

// CountOwners returns the number of active owner users in a tenant.
func (r *UserRepo) CountOwners(ctx context.Context, tenantID bson.ObjectID) (int64, error) {
	return r.Collection().Finder().Filter(bson.D{
		{Key: types.UserDoc__TenantIDField, Value: tenantID},
		{Key: "Role", Value: types.RoleOwner},
		{Key: "IsActive", Value: true},
	}).Count(ctx)
}
