// Package repo provides generic tenant-scoped CRUD over the mongo
// collections in internal/db/mongo, generalizing the teacher's
// facade.BaseFacade pattern with an explicit tenant_id on every operation.
package repo

import (
	"context"
	"fmt"

	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/log"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Hooks lets each entity repository add uniqueness/referential checks and
// best-effort side effects, mirroring the teacher's ICrud[T].
type Hooks[T any] interface {
	PreCreate(ctx context.Context, doc *T) error
	PostCreate(ctx context.Context, doc *T) error
	PreUpdate(ctx context.Context, doc *T) error
	PostUpdate(ctx context.Context, doc *T) error
	PreDelete(ctx context.Context, doc *T) error
	PostDelete(ctx context.Context, doc *T) error
}

// NopHooks is embeddable by entities with no extra invariants to check.
type NopHooks[T any] struct{}

func (NopHooks[T]) PreCreate(context.Context, *T) error  { return nil }
func (NopHooks[T]) PostCreate(context.Context, *T) error { return nil }
func (NopHooks[T]) PreUpdate(context.Context, *T) error  { return nil }
func (NopHooks[T]) PostUpdate(context.Context, *T) error { return nil }
func (NopHooks[T]) PreDelete(context.Context, *T) error  { return nil }
func (NopHooks[T]) PostDelete(context.Context, *T) error { return nil }

// Repo is a tenant-scoped CRUD surface over a single collection.
type Repo[T any] struct {
	coll  mngo.ICollection[T]
	hooks Hooks[T]
	name  string
}

func New[T any](coll mngo.ICollection[T], hooks Hooks[T], name string) *Repo[T] {
	return &Repo[T]{coll: coll, hooks: hooks, name: name}
}

func (r *Repo[T]) getLogger(fn string) *logrus.Entry {
	return log.GetLogger(log.RepoModule).WithField("func", fmt.Sprintf("%s.%s", r.name, fn))
}

// Create inserts doc after running PreCreate; PostCreate runs best-effort
// in a goroutine, matching the teacher's facade.BaseFacade.CreateOne.
func (r *Repo[T]) Create(ctx context.Context, doc *T) (*T, error) {
	ll := r.getLogger("Create")
	if doc == nil {
		return nil, errs.NewValidation("document is nil")
	}
	if err := r.hooks.PreCreate(ctx, doc); err != nil {
		return nil, err
	}
	if _, err := r.coll.Creator().InsertOne(ctx, doc); err != nil {
		if mongoIsDuplicateKey(err) {
			return nil, errs.NewConflict("duplicate key")
		}
		return nil, errs.WrapStoreUnavailable(err, "insert failed")
	}
	go func() {
		if err := r.hooks.PostCreate(ctx, doc); err != nil {
			ll.WithError(err).Error("post-create hook failed")
		}
	}()
	return doc, nil
}

// FindOne returns exactly one document matching filter, NotFound if zero.
func (r *Repo[T]) FindOne(ctx context.Context, filter bson.D) (*T, error) {
	doc, err := r.coll.Finder().Filter(filter).FindOne(ctx)
	if err != nil {
		if mongoIsNoDocuments(err) {
			return nil, errs.NewNotFound(r.name + " not found")
		}
		return nil, errs.WrapStoreUnavailable(err, "find failed")
	}
	return doc, nil
}

// Find returns every document matching filter.
func (r *Repo[T]) Find(ctx context.Context, filter bson.D) ([]*T, error) {
	docs, err := r.coll.Finder().Filter(filter).Find(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "find failed")
	}
	return docs, nil
}

// Update runs PreUpdate, replaces the document by _id, then runs
// PostUpdate best-effort.
func (r *Repo[T]) Update(ctx context.Context, id bson.ObjectID, doc *T) (*T, error) {
	ll := r.getLogger("Update")
	if err := r.hooks.PreUpdate(ctx, doc); err != nil {
		return nil, err
	}
	filter := bson.D{{Key: "_id", Value: id}}
	if _, err := r.coll.Updater().Filter(filter).Updates(bson.D{{Key: "$set", Value: doc}}).UpdateOne(ctx); err != nil {
		return nil, errs.WrapStoreUnavailable(err, "update failed")
	}
	go func() {
		if err := r.hooks.PostUpdate(ctx, doc); err != nil {
			ll.WithError(err).Error("post-update hook failed")
		}
	}()
	return doc, nil
}

// DeleteOne removes exactly one document matching filter, erroring if the
// match count is zero or greater than one.
func (r *Repo[T]) DeleteOne(ctx context.Context, filter bson.D) (*T, error) {
	ll := r.getLogger("DeleteOne")
	fnd := r.coll.Finder().Filter(filter)
	c, err := fnd.Count(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "count failed")
	}
	if c == 0 {
		return nil, errs.NewNotFound(r.name + " not found")
	}
	if c > 1 {
		return nil, errs.WrapInternal(fmt.Errorf("matched %d documents", c), "ambiguous delete")
	}
	doc, err := fnd.FindOne(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "find failed")
	}
	if err := r.hooks.PreDelete(ctx, doc); err != nil {
		return nil, err
	}
	if _, err := r.coll.Deleter().Filter(filter).DeleteOne(ctx); err != nil {
		return nil, errs.WrapStoreUnavailable(err, "delete failed")
	}
	go func() {
		if err := r.hooks.PostDelete(ctx, doc); err != nil {
			ll.WithError(err).Error("post-delete hook failed")
		}
	}()
	return doc, nil
}

// Collection exposes the underlying collection for callers needing
// aggregation or finder-chain access the generic surface doesn't cover.
func (r *Repo[T]) Collection() mngo.ICollection[T] { return r.coll }
