// Package orders is the order workflow component: it validates and commits
// orders against live catalog state, reserves tracked inventory with atomic
// conditional decrements, and enforces the role-scoped visibility and status
// transition rules.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/store"
)

type Service struct {
	orders   store.OrderStore
	products store.ProductStore
	shops    store.ShopStore
	logger   *zap.Logger
}

func NewService(orders store.OrderStore, products store.ProductStore, shops store.ShopStore, logger *zap.Logger) *Service {
	return &Service{
		orders:   orders,
		products: products,
		shops:    shops,
		logger:   logger,
	}
}

type ItemInput struct {
	ProductID string
	Quantity  int
}

type DeliveryInput struct {
	Method     string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

type OrderInput struct {
	ShopID        string
	Items         []ItemInput
	Delivery      DeliveryInput
	PaymentMethod string
}

// Create runs the order creation sequence: resolve the shop, validate every
// line against live product state, reserve tracked inventory, then persist
// the order with snapshotted names/prices and server-computed totals. Client
// submitted prices and totals are never trusted.
//
// Reservation happens before the order write so a concurrent request that
// loses the conditional decrement fails instead of committing an order it
// cannot fill. A failure part-way releases the reservations already taken;
// a failed release is logged and left for reconciliation.
func (s *Service) Create(ctx context.Context, user *models.User, in OrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item: %w", errs.ErrInvalidInput)
	}
	method := models.DeliveryMethod(in.Delivery.Method)
	if !method.Valid() {
		return nil, fmt.Errorf("invalid delivery method %q: %w", in.Delivery.Method, errs.ErrInvalidInput)
	}

	shop, err := s.shops.ByID(ctx, in.ShopID)
	if err != nil {
		return nil, err
	}

	// Validation pass: all lines must clear before anything is written.
	items := make([]models.OrderItem, 0, len(in.Items))
	tracked := make([]models.OrderItem, 0, len(in.Items))
	subtotal := 0.0
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive for product %s: %w", line.ProductID, errs.ErrInvalidInput)
		}
		product, err := s.products.ByIDInShop(ctx, line.ProductID, in.ShopID)
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("product %s not found in this shop: %w", line.ProductID, errs.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if !product.IsAvailable {
			return nil, fmt.Errorf("product %s is not available: %w", product.Name, errs.ErrConflict)
		}
		if product.TracksInventory() && *product.Inventory < line.Quantity {
			return nil, fmt.Errorf("not enough inventory for %s: %w", product.Name, errs.ErrConflict)
		}

		price := product.EffectivePrice()
		item := models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     price,
			Quantity:  line.Quantity,
			Total:     price * float64(line.Quantity),
		}
		items = append(items, item)
		if product.TracksInventory() {
			tracked = append(tracked, item)
		}
		subtotal += item.Total
	}

	// Reservation pass: conditional decrement per tracked item closes the
	// check-then-act race.
	reserved := make([]models.OrderItem, 0, len(tracked))
	for _, item := range tracked {
		if err := s.products.DecrementInventory(ctx, item.ProductID, item.Quantity); err != nil {
			s.release(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	fee := deliveryFee(shop, method, subtotal)
	now := time.Now().UTC()
	order := &models.Order{
		ID:       uuid.NewString(),
		ShopID:   in.ShopID,
		UserID:   user.ID,
		Items:    items,
		Subtotal: subtotal,
		DeliveryInfo: models.DeliveryInfo{
			Method:     method,
			Address:    in.Delivery.Address,
			City:       in.Delivery.City,
			State:      in.Delivery.State,
			PostalCode: in.Delivery.PostalCode,
			Country:    in.Delivery.Country,
			Fee:        fee,
		},
		Total:         subtotal + fee,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: models.PaymentPending,
		Status:        models.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = "mock"
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		s.release(ctx, reserved)
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("shop_id", order.ShopID),
		zap.String("user_id", user.ID),
		zap.Int("items", len(order.Items)),
		zap.Float64("total", order.Total))
	return order, nil
}

// release returns reserved inventory after a failed creation sequence.
func (s *Service) release(ctx context.Context, reserved []models.OrderItem) {
	for _, item := range reserved {
		if err := s.products.IncrementInventory(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to release reserved inventory",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

func deliveryFee(shop *models.Shop, method models.DeliveryMethod, subtotal float64) float64 {
	if method != models.DeliveryMethodDelivery {
		return 0
	}
	ds := shop.DeliverySettings
	if ds.DeliveryFee == nil {
		return 0
	}
	if ds.FreeDeliveryThreshold != nil && subtotal >= *ds.FreeDeliveryThreshold {
		return 0
	}
	return *ds.DeliveryFee
}

type ListFilter struct {
	ShopID string
	Status string
	Skip   int64
	Limit  int64
}

// List returns orders scoped by the caller's role: customers see only their
// own, shop admins only their shops', superadmins everything.
func (s *Service) List(ctx context.Context, user *models.User, f ListFilter) ([]*models.Order, error) {
	if f.Status != "" && !models.OrderStatus(f.Status).Valid() {
		return nil, fmt.Errorf("invalid status %q: %w", f.Status, errs.ErrInvalidInput)
	}

	of := store.OrderFilter{
		Status: models.OrderStatus(f.Status),
		Skip:   f.Skip,
		Limit:  f.Limit,
	}
	switch {
	case user.Role == models.RoleCustomer:
		of.UserID = user.ID
	case user.Role == models.RoleShopAdmin:
		if f.ShopID != "" && user.AdminOf(f.ShopID) {
			of.ShopID = f.ShopID
		} else {
			// Restrict to the administered set; an out-of-set filter
			// falls back to it rather than leaking other shops.
			of.ShopIDs = user.Shops
			if of.ShopIDs == nil {
				of.ShopIDs = []string{}
			}
		}
	default: // superadmin
		of.ShopID = f.ShopID
	}

	return s.orders.List(ctx, of)
}

// Get returns a single order under the same visibility rules as List.
func (s *Service) Get(ctx context.Context, user *models.User, orderID string) (*models.Order, error) {
	order, err := s.orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleCustomer:
		if order.UserID != user.ID {
			return nil, fmt.Errorf("not authorized to view this order: %w", errs.ErrForbidden)
		}
	case models.RoleShopAdmin:
		if !user.AdminOf(order.ShopID) {
			return nil, fmt.Errorf("not authorized to view this order: %w", errs.ErrForbidden)
		}
	case models.RoleSuperadmin:
	}

	return order, nil
}

// UpdateStatus advances the order state machine. Only admins of the order's
// shop and superadmins may transition; moves go forward or to cancelled, and
// terminal states are immutable.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, orderID string, status string) (*models.Order, error) {
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("invalid status %q: %w", status, errs.ErrConflict)
	}

	order, err := s.orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !actor.IsSuperadmin() {
		if !actor.Role.AtLeastShopAdmin() || !actor.AdminOf(order.ShopID) {
			return nil, fmt.Errorf("not authorized to update this order: %w", errs.ErrForbidden)
		}
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("cannot transition order from %s to %s: %w", order.Status, next, errs.ErrConflict)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)),
		zap.String("actor_id", actor.ID))
	return s.orders.ByID(ctx, orderID)
}
