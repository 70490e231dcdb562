package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/localhands/pkg/config"
)

// MongoRepository owns the client connection and hands out per-collection
// stores. It is injected into the services at construction; there is no
// package-level handle.
type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique keys the services rely on: user email and
// shop slug. Duplicate-key errors on insert surface as ErrConflict, which
// closes the check-then-insert slug race.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := m.database.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = m.database.Collection("shops").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	for _, spec := range []struct {
		coll string
		key  string
	}{
		{"products", "shop_id"},
		{"orders", "shop_id"},
		{"orders", "user_id"},
	} {
		_, err = m.database.Collection(spec.coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: spec.key, Value: 1}},
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *MongoRepository) Users() *UserRepository {
	return &UserRepository{coll: m.database.Collection("users")}
}

func (m *MongoRepository) Shops() *ShopRepository {
	return &ShopRepository{coll: m.database.Collection("shops")}
}

func (m *MongoRepository) Products() *ProductRepository {
	return &ProductRepository{coll: m.database.Collection("products")}
}

func (m *MongoRepository) Orders() *OrderRepository {
	return &OrderRepository{coll: m.database.Collection("orders")}
}
