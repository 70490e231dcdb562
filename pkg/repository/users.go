package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
)

// UserRepository implements store.UserStore on the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email %s already registered: %w", u.Email, errs.ErrConflict)
	}
	return err
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) ByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user: %w", errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role models.Role) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) AddShop(ctx context.Context, userID, shopID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": userID},
		bson.M{
			"$addToSet": bson.M{"shops": shopID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

func (r *UserRepository) RemoveShop(ctx context.Context, userID, shopID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": userID},
		bson.M{
			"$pull": bson.M{"shops": shopID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

func (r *UserRepository) RemoveShopFromAll(ctx context.Context, shopID string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"shops": shopID},
		bson.M{
			"$pull": bson.M{"shops": shopID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}
