package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/localhands/pkg/auth"
	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/store"
)

// ProductInput carries the mutable product fields for create and update.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	SalePrice   *float64
	Images      []string
	Category    string
	Inventory   *int
	IsAvailable bool
	Tags        []string
}

// CreateProduct adds a product to a shop the actor administers.
func (s *Service) CreateProduct(ctx context.Context, actor *models.User, shopID string, in ProductInput) (*models.Product, error) {
	shop, err := s.shops.ByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageShop(actor, shop) {
		return nil, fmt.Errorf("not authorized to add products to this shop: %w", errs.ErrForbidden)
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:        uuid.NewString(),
		ShopID:    shopID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProductInput(product, in)

	if err := s.products.Insert(ctx, product); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.DropCategories(ctx)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("shop_id", shopID),
		zap.String("actor_id", actor.ID))
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.products.ByID(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f store.ProductFilter) ([]*models.Product, error) {
	return s.products.List(ctx, f)
}

// UpdateProduct applies the input to an existing product. The owning shop is
// immutable.
func (s *Service) UpdateProduct(ctx context.Context, actor *models.User, productID string, in ProductInput) (*models.Product, error) {
	product, err := s.products.ByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.ByID(ctx, product.ShopID)
	if err != nil {
		return nil, err
	}
	if !auth.CanManageShop(actor, shop) {
		return nil, fmt.Errorf("not authorized to update this product: %w", errs.ErrForbidden)
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	applyProductInput(product, in)
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Replace(ctx, product); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.DropCategories(ctx)
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, actor *models.User, productID string) error {
	product, err := s.products.ByID(ctx, productID)
	if err != nil {
		return err
	}
	shop, err := s.shops.ByID(ctx, product.ShopID)
	if err != nil {
		return err
	}
	if !auth.CanManageShop(actor, shop) {
		return fmt.Errorf("not authorized to delete this product: %w", errs.ErrForbidden)
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.DropCategories(ctx)
	}

	s.logger.Info("product deleted",
		zap.String("product_id", productID),
		zap.String("shop_id", product.ShopID),
		zap.String("actor_id", actor.ID))
	return nil
}

// Categories lists the distinct product categories across all shops.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if cats, ok := s.cache.GetCategories(ctx); ok {
			return cats, nil
		}
	}
	cats, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.StoreCategories(ctx, cats)
	}
	return cats, nil
}

func validateProductInput(in ProductInput) error {
	if in.Name == "" || in.Category == "" {
		return fmt.Errorf("product name and category are required: %w", errs.ErrInvalidInput)
	}
	if in.Price < 0 {
		return fmt.Errorf("product price cannot be negative: %w", errs.ErrInvalidInput)
	}
	if in.SalePrice != nil && *in.SalePrice < 0 {
		return fmt.Errorf("sale price cannot be negative: %w", errs.ErrInvalidInput)
	}
	if in.Inventory != nil && *in.Inventory < 0 {
		return fmt.Errorf("inventory cannot be negative: %w", errs.ErrInvalidInput)
	}
	return nil
}

func applyProductInput(p *models.Product, in ProductInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.SalePrice = in.SalePrice
	p.Images = in.Images
	p.Category = in.Category
	p.Inventory = in.Inventory
	p.IsAvailable = in.IsAvailable
	p.Tags = in.Tags
}
