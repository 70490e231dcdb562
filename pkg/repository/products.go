package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/store"
)

// ProductRepository implements store.ProductStore on the products collection.
type ProductRepository struct {
	coll *mongo.Collection
}

func (r *ProductRepository) Insert(ctx context.Context, p *models.Product) error {
	_, err := r.coll.InsertOne(ctx, p)
	return err
}

func (r *ProductRepository) ByID(ctx context.Context, id string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *ProductRepository) ByIDInShop(ctx context.Context, id, shopID string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"id": id, "shop_id": shopID})
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("product: %w", errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context, f store.ProductFilter) ([]*models.Product, error) {
	query := bson.M{}
	if f.ShopID != "" {
		query["shop_id"] = f.ShopID
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.AvailableOnly {
		query["is_available"] = true
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = []bson.M{
			{"name": re},
			{"description": re},
			{"tags": f.Search},
		}
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

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Replace(ctx context.Context, p *models.Product) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", p.ID, errs.ErrNotFound)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *ProductRepository) DeleteByShop(ctx context.Context, shopID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"shop_id": shopID})
	return err
}

func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	return toStrings(values), nil
}

func (r *ProductRepository) ShopIDsWithCategory(ctx context.Context, category string) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "shop_id", bson.M{"category": category})
	if err != nil {
		return nil, err
	}
	return toStrings(values), nil
}

// DecrementInventory performs the conditional decrement in one store
// operation: the filter only matches while the tracked count covers qty, so
// concurrent orders cannot drive inventory negative.
func (r *ProductRepository) DecrementInventory(ctx context.Context, id string, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "inventory": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"inventory": -qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// No match: absent, untracked, or insufficient.
	p, err := r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.TracksInventory() {
		return nil
	}
	return fmt.Errorf("not enough inventory for %s: %w", p.Name, errs.ErrConflict)
}

func (r *ProductRepository) IncrementInventory(ctx context.Context, id string, qty int) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "inventory": bson.M{"$type": "number"}},
		bson.M{
			"$inc": bson.M{"inventory": qty},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

func toStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
