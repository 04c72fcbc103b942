package repo

import (
	"context"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrganizationRepo struct{ *Repo[types.OrganizationDoc] }

func NewOrganizationRepo(c mngo.ICollection[types.OrganizationDoc]) *OrganizationRepo {
	return &OrganizationRepo{New(c, NopHooks[types.OrganizationDoc]{}, "organization")}
}

func (r *OrganizationRepo) Get(ctx context.Context, id bson.ObjectID) (*types.OrganizationDoc, error) {
	return r.FindOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// ListAll returns every organization, the tenant set the runtime manager
// starts a receiver fleet for at boot.
func (r *OrganizationRepo) ListAll(ctx context.Context) ([]*types.OrganizationDoc, error) {
	return r.Find(ctx, bson.D{})
}
