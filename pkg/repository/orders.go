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

// OrderRepository implements store.OrderStore on the orders collection.
type OrderRepository struct {
	coll *mongo.Collection
}

func (r *OrderRepository) Insert(ctx context.Context, o *models.Order) error {
	_, err := r.coll.InsertOne(ctx, o)
	return err
}

func (r *OrderRepository) ByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("order %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context, f store.OrderFilter) ([]*models.Order, error) {
	query := bson.M{}
	if f.UserID != "" {
		query["user_id"] = f.UserID
	}
	if f.ShopID != "" {
		query["shop_id"] = f.ShopID
	} else if f.ShopIDs != nil {
		query["shop_id"] = bson.M{"$in": f.ShopIDs}
	}
	if f.Status != "" {
		query["status"] = f.Status
	}

	opts := options.Find().SetSkip(f.Skip).SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
