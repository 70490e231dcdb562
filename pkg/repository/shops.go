package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/store"
)

// ShopRepository implements store.ShopStore on the shops collection.
type ShopRepository struct {
	coll *mongo.Collection
}

func (r *ShopRepository) Insert(ctx context.Context, s *models.Shop) error {
	_, err := r.coll.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("shop slug %q already exists: %w", s.Slug, errs.ErrConflict)
	}
	return err
}

func (r *ShopRepository) ByID(ctx context.Context, id string) (*models.Shop, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *ShopRepository) BySlug(ctx context.Context, slug string) (*models.Shop, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ShopRepository) findOne(ctx context.Context, filter bson.M) (*models.Shop, error) {
	var s models.Shop
	err := r.coll.FindOne(ctx, filter).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("shop: %w", errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShopRepository) List(ctx context.Context, f store.ShopFilter) ([]*models.Shop, error) {
	query := bson.M{}
	if f.ActiveOnly {
		query["is_active"] = true
	}
	if f.IDs != nil {
		query["id"] = bson.M{"$in": f.IDs}
	}

	opts := options.Find().SetSkip(f.Skip).SetSort(bson.D{{Key: "created_at", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shops []*models.Shop
	if err = cursor.All(ctx, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *ShopRepository) Replace(ctx context.Context, s *models.Shop) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": s.ID}, s)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("shop %s: %w", s.ID, errs.ErrNotFound)
	}
	return nil
}

func (r *ShopRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("shop %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *ShopRepository) AddAdmin(ctx context.Context, shopID, userID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": shopID},
		bson.M{
			"$addToSet": bson.M{"admin_ids": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("shop %s: %w", shopID, errs.ErrNotFound)
	}
	return nil
}

func (r *ShopRepository) RemoveAdmin(ctx context.Context, shopID, userID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": shopID},
		bson.M{
			"$pull": bson.M{"admin_ids": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("shop %s: %w", shopID, errs.ErrNotFound)
	}
	return nil
}
