// Package catalog is the catalog authorization component: it gates shop and
// product mutation by shop admin membership and owns the admin-membership
// mirrors and the shop delete cascade.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/localhands/pkg/auth"
	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/store"
)

// Cache is the read-cache surface the service uses for public lookups.
// Implemented by repository.Cache; a nil Cache disables caching.
type Cache interface {
	GetShop(ctx context.Context, slug string) (*models.Shop, bool)
	StoreShop(ctx context.Context, s *models.Shop)
	DropShop(ctx context.Context, slug string)
	GetCategories(ctx context.Context) ([]string, bool)
	StoreCategories(ctx context.Context, cats []string)
	DropCategories(ctx context.Context)
}

type Service struct {
	shops    store.ShopStore
	products store.ProductStore
	users    store.UserStore
	cache    Cache
	logger   *zap.Logger
}

func NewService(shops store.ShopStore, products store.ProductStore, users store.UserStore, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		shops:    shops,
		products: products,
		users:    users,
		cache:    cache,
		logger:   logger,
	}
}

// ShopInput carries the mutable shop fields for create and update.
type ShopInput struct {
	Name             string
	Slug             string
	Description      string
	Logo             string
	Banner           string
	DeliverySettings models.DeliverySettings
	ContactEmail     string
	ContactPhone     string
	Address          string
	City             string
	State            string
	PostalCode       string
	Country          string
	Location         *models.GeoPoint
}

// CreateShop creates a shop with the caller as its sole initial admin. The
// slug must be globally unique; the store's unique index backstops the
// check-then-insert race.
func (s *Service) CreateShop(ctx context.Context, actor *models.User, in ShopInput) (*models.Shop, error) {
	if !actor.Role.AtLeastShopAdmin() {
		return nil, fmt.Errorf("shop creation requires shop admin role: %w", errs.ErrForbidden)
	}
	if in.Name == "" || in.Slug == "" {
		return nil, fmt.Errorf("shop name and slug are required: %w", errs.ErrInvalidInput)
	}

	if _, err := s.shops.BySlug(ctx, in.Slug); err == nil {
		return nil, fmt.Errorf("shop slug %q already exists: %w", in.Slug, errs.ErrConflict)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	shop := &models.Shop{
		ID:        uuid.NewString(),
		Slug:      in.Slug,
		AdminIDs:  []string{actor.ID},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyShopInput(shop, in)

	if err := s.shops.Insert(ctx, shop); err != nil {
		return nil, err
	}
	if err := s.users.AddShop(ctx, actor.ID, shop.ID); err != nil {
		return nil, err
	}

	s.logger.Info("shop created",
		zap.String("shop_id", shop.ID),
		zap.String("slug", shop.Slug),
		zap.String("actor_id", actor.ID))
	return shop, nil
}

type ShopListFilter struct {
	ActiveOnly bool
	Category   string
	Skip       int64
	Limit      int64
}

func (s *Service) ListShops(ctx context.Context, f ShopListFilter) ([]*models.Shop, error) {
	sf := store.ShopFilter{ActiveOnly: f.ActiveOnly, Skip: f.Skip, Limit: f.Limit}
	if f.Category != "" {
		ids, err := s.products.ShopIDsWithCategory(ctx, f.Category)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []*models.Shop{}, nil
		}
		sf.IDs = ids
	}
	return s.shops.List(ctx, sf)
}

func (s *Service) GetShopBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	if s.cache != nil {
		if shop, ok := s.cache.GetShop(ctx, slug); ok {
			return shop, nil
		}
	}
	shop, err := s.shops.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.StoreShop(ctx, shop)
	}
	return shop, nil
}

// UpdateShop applies the input to an existing shop. The slug is immutable;
// the input's slug is ignored.
func (s *Service) UpdateShop(ctx context.Context, actor *models.User, shopID string, in ShopInput) (*models.Shop, error) {
	shop, err := s.shops.ByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageShop(actor, shop) {
		return nil, fmt.Errorf("not authorized to update this shop: %w", errs.ErrForbidden)
	}

	applyShopInput(shop, in)
	shop.UpdatedAt = time.Now().UTC()

	if err := s.shops.Replace(ctx, shop); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.DropShop(ctx, shop.Slug)
	}
	return shop, nil
}

// DeleteShop hard-deletes a shop and cascades: products first, then the
// shop's entry in every user's admin mirror, then the shop document itself.
// The shop goes last so a crash mid-cascade never leaves records pointing at
// a missing shop. Superadmin only.
func (s *Service) DeleteShop(ctx context.Context, actor *models.User, shopID string) error {
	if !actor.IsSuperadmin() {
		return fmt.Errorf("shop deletion requires superadmin: %w", errs.ErrForbidden)
	}
	shop, err := s.shops.ByID(ctx, shopID)
	if err != nil {
		return err
	}

	if err := s.products.DeleteByShop(ctx, shopID); err != nil {
		return fmt.Errorf("cascade: deleting products of shop %s: %w", shopID, err)
	}
	s.logger.Info("cascade: shop products deleted", zap.String("shop_id", shopID))

	if err := s.users.RemoveShopFromAll(ctx, shopID); err != nil {
		return fmt.Errorf("cascade: stripping shop %s from user mirrors: %w", shopID, err)
	}
	s.logger.Info("cascade: admin mirrors stripped", zap.String("shop_id", shopID))

	if err := s.shops.Delete(ctx, shopID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.DropShop(ctx, shop.Slug)
		s.cache.DropCategories(ctx)
	}

	s.logger.Info("shop deleted",
		zap.String("shop_id", shopID),
		zap.String("slug", shop.Slug),
		zap.String("actor_id", actor.ID))
	return nil
}

// AddAdmin grants shop admin membership to the user with the given email,
// promoting customers to shop_admin. Idempotent for existing admins.
func (s *Service) AddAdmin(ctx context.Context, actor *models.User, shopID, email string) (*models.Shop, error) {
	shop, err := s.shops.ByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageShop(actor, shop) {
		return nil, fmt.Errorf("not authorized to add admins to this shop: %w", errs.ErrForbidden)
	}

	target, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if target.Role == models.RoleCustomer {
		if err := s.users.SetRole(ctx, target.ID, models.RoleShopAdmin); err != nil {
			return nil, err
		}
	}

	if !shop.HasAdmin(target.ID) {
		if err := s.shops.AddAdmin(ctx, shopID, target.ID); err != nil {
			return nil, err
		}
		if err := s.users.AddShop(ctx, target.ID, shopID); err != nil {
			return nil, err
		}
		s.logger.Info("shop admin added",
			zap.String("shop_id", shopID),
			zap.String("user_id", target.ID),
			zap.String("actor_id", actor.ID))
	}

	return s.shops.ByID(ctx, shopID)
}

// RemoveAdmin revokes membership, refusing to leave the shop without admins.
func (s *Service) RemoveAdmin(ctx context.Context, actor *models.User, shopID, userID string) (*models.Shop, error) {
	shop, err := s.shops.ByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageShop(actor, shop) {
		return nil, fmt.Errorf("not authorized to remove admins from this shop: %w", errs.ErrForbidden)
	}

	if shop.HasAdmin(userID) && len(shop.AdminIDs) <= 1 {
		return nil, fmt.Errorf("cannot remove the last admin from the shop: %w", errs.ErrConflict)
	}

	if err := s.shops.RemoveAdmin(ctx, shopID, userID); err != nil {
		return nil, err
	}
	if err := s.users.RemoveShop(ctx, userID, shopID); err != nil {
		return nil, err
	}

	s.logger.Info("shop admin removed",
		zap.String("shop_id", shopID),
		zap.String("user_id", userID),
		zap.String("actor_id", actor.ID))
	return s.shops.ByID(ctx, shopID)
}

func applyShopInput(shop *models.Shop, in ShopInput) {
	shop.Name = in.Name
	shop.Description = in.Description
	shop.Logo = in.Logo
	shop.Banner = in.Banner
	shop.DeliverySettings = in.DeliverySettings
	shop.ContactEmail = in.ContactEmail
	shop.ContactPhone = in.ContactPhone
	shop.Address = in.Address
	shop.City = in.City
	shop.State = in.State
	shop.PostalCode = in.PostalCode
	shop.Country = in.Country
	shop.Location = in.Location
}
