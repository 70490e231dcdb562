// Package store declares the document-store interfaces the services are built
// against. pkg/repository provides the MongoDB implementation and
// pkg/repository/memory an in-memory one for tests and local development.
//
// Implementations report failures with the pkg/errs sentinels: ErrNotFound for
// absent documents, ErrConflict for unique-key violations and failed
// conditional inventory decrements.
package store

import (
	"context"

	"github.com/example/localhands/pkg/models"
)

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id string) (*models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) error
	// AddShop and RemoveShop maintain the user-side mirror of shop admin
	// membership.
	AddShop(ctx context.Context, userID, shopID string) error
	RemoveShop(ctx context.Context, userID, shopID string) error
	RemoveShopFromAll(ctx context.Context, shopID string) error
}

type ShopFilter struct {
	ActiveOnly bool
	// IDs restricts the result to the given shop ids when non-nil.
	IDs   []string
	Skip  int64
	Limit int64
}

type ShopStore interface {
	Insert(ctx context.Context, s *models.Shop) error
	ByID(ctx context.Context, id string) (*models.Shop, error)
	BySlug(ctx context.Context, slug string) (*models.Shop, error)
	List(ctx context.Context, f ShopFilter) ([]*models.Shop, error)
	Replace(ctx context.Context, s *models.Shop) error
	Delete(ctx context.Context, id string) error
	AddAdmin(ctx context.Context, shopID, userID string) error
	RemoveAdmin(ctx context.Context, shopID, userID string) error
}

type ProductFilter struct {
	ShopID        string
	Category      string
	AvailableOnly bool
	// Search matches name and description case-insensitively and tags
	// exactly.
	Search string
	Skip   int64
	Limit  int64
}

type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) error
	ByID(ctx context.Context, id string) (*models.Product, error)
	// ByIDInShop resolves a product only within the given shop; an id valid
	// in another shop is ErrNotFound.
	ByIDInShop(ctx context.Context, id, shopID string) (*models.Product, error)
	List(ctx context.Context, f ProductFilter) ([]*models.Product, error)
	Replace(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	DeleteByShop(ctx context.Context, shopID string) error
	Categories(ctx context.Context) ([]string, error)
	ShopIDsWithCategory(ctx context.Context, category string) ([]string, error)
	// DecrementInventory subtracts qty from a tracked inventory count in a
	// single conditional operation. It returns ErrConflict when the count
	// is below qty, and is a no-op for untracked products.
	DecrementInventory(ctx context.Context, id string, qty int) error
	// IncrementInventory releases a prior decrement. No-op for untracked
	// products.
	IncrementInventory(ctx context.Context, id string, qty int) error
}

type OrderFilter struct {
	UserID string
	ShopID string
	// ShopIDs restricts to any of the given shops when non-nil; used for
	// shop-admin scoping. Ignored when ShopID is set.
	ShopIDs []string
	Status  models.OrderStatus
	Skip    int64
	Limit   int64
}

type OrderStore interface {
	Insert(ctx context.Context, o *models.Order) error
	ByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, f OrderFilter) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
}
