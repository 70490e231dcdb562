// Package memory provides a mutex-guarded in-memory implementation of the
// store interfaces, used by the service tests and for running the API without
// external dependencies. Semantics mirror the Mongo repositories, including
// unique email/slug keys and the atomic conditional inventory decrement.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/store"
)

type Store struct {
	mu sync.Mutex

	users    map[string]*models.User
	shops    map[string]*models.Shop
	products map[string]*models.Product
	orders   map[string]*models.Order

	// insertion order, for stable listings
	userIDs    []string
	shopIDs    []string
	productIDs []string
	orderIDs   []string
}

func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		shops:    make(map[string]*models.Shop),
		products: make(map[string]*models.Product),
		orders:   make(map[string]*models.Order),
	}
}

func (s *Store) Users() store.UserStore       { return (*userStore)(s) }
func (s *Store) Shops() store.ShopStore       { return (*shopStore)(s) }
func (s *Store) Products() store.ProductStore { return (*productStore)(s) }
func (s *Store) Orders() store.OrderStore     { return (*orderStore)(s) }

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Shops = append([]string(nil), u.Shops...)
	return &cp
}

func cloneShop(sh *models.Shop) *models.Shop {
	cp := *sh
	cp.AdminIDs = append([]string(nil), sh.AdminIDs...)
	if sh.Location != nil {
		loc := *sh.Location
		cp.Location = &loc
	}
	return &cp
}

func cloneProduct(p *models.Product) *models.Product {
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	cp.Tags = append([]string(nil), p.Tags...)
	if p.SalePrice != nil {
		v := *p.SalePrice
		cp.SalePrice = &v
	}
	if p.Inventory != nil {
		v := *p.Inventory
		cp.Inventory = &v
	}
	return &cp
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

// userStore

type userStore Store

func (s *userStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email %s already registered: %w", u.Email, errs.ErrConflict)
		}
	}
	s.users[u.ID] = cloneUser(u)
	s.userIDs = append(s.userIDs, u.ID)
	return nil
}

func (s *userStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.userIDs {
		if s.users[id].Email == email {
			return cloneUser(s.users[id]), nil
		}
	}
	return nil, fmt.Errorf("user: %w", errs.ErrNotFound)
}

func (s *userStore) ByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", errs.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (s *userStore) SetRole(_ context.Context, id string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, errs.ErrNotFound)
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *userStore) AddShop(_ context.Context, userID, shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	for _, id := range u.Shops {
		if id == shopID {
			return nil
		}
	}
	u.Shops = append(u.Shops, shopID)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *userStore) RemoveShop(_ context.Context, userID, shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Shops = remove(u.Shops, shopID)
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *userStore) RemoveShopFromAll(_ context.Context, shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		u.Shops = remove(u.Shops, shopID)
	}
	return nil
}

func remove(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// shopStore

type shopStore Store

func (s *shopStore) Insert(_ context.Context, sh *models.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.shops {
		if existing.Slug == sh.Slug {
			return fmt.Errorf("shop slug %q already exists: %w", sh.Slug, errs.ErrConflict)
		}
	}
	s.shops[sh.ID] = cloneShop(sh)
	s.shopIDs = append(s.shopIDs, sh.ID)
	return nil
}

func (s *shopStore) ByID(_ context.Context, id string) (*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shops[id]
	if !ok {
		return nil, fmt.Errorf("shop: %w", errs.ErrNotFound)
	}
	return cloneShop(sh), nil
}

func (s *shopStore) BySlug(_ context.Context, slug string) (*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.shopIDs {
		if s.shops[id].Slug == slug {
			return cloneShop(s.shops[id]), nil
		}
	}
	return nil, fmt.Errorf("shop: %w", errs.ErrNotFound)
}

func (s *shopStore) List(_ context.Context, f store.ShopFilter) ([]*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Shop
	for _, id := range s.shopIDs {
		sh := s.shops[id]
		if f.ActiveOnly && !sh.IsActive {
			continue
		}
		if f.IDs != nil && !contains(f.IDs, sh.ID) {
			continue
		}
		out = append(out, cloneShop(sh))
	}
	return page(out, f.Skip, f.Limit), nil
}

func (s *shopStore) Replace(_ context.Context, sh *models.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[sh.ID]; !ok {
		return fmt.Errorf("shop %s: %w", sh.ID, errs.ErrNotFound)
	}
	s.shops[sh.ID] = cloneShop(sh)
	return nil
}

func (s *shopStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[id]; !ok {
		return fmt.Errorf("shop %s: %w", id, errs.ErrNotFound)
	}
	delete(s.shops, id)
	s.shopIDs = remove(s.shopIDs, id)
	return nil
}

func (s *shopStore) AddAdmin(_ context.Context, shopID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shops[shopID]
	if !ok {
		return fmt.Errorf("shop %s: %w", shopID, errs.ErrNotFound)
	}
	if !sh.HasAdmin(userID) {
		sh.AdminIDs = append(sh.AdminIDs, userID)
		sh.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *shopStore) RemoveAdmin(_ context.Context, shopID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shops[shopID]
	if !ok {
		return fmt.Errorf("shop %s: %w", shopID, errs.ErrNotFound)
	}
	sh.AdminIDs = remove(sh.AdminIDs, userID)
	sh.UpdatedAt = time.Now().UTC()
	return nil
}

func contains(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

// productStore

type productStore Store

func (s *productStore) Insert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
	s.productIDs = append(s.productIDs, p.ID)
	return nil
}

func (s *productStore) ByID(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product: %w", errs.ErrNotFound)
	}
	return cloneProduct(p), nil
}

func (s *productStore) ByIDInShop(_ context.Context, id, shopID string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.ShopID != shopID {
		return nil, fmt.Errorf("product: %w", errs.ErrNotFound)
	}
	return cloneProduct(p), nil
}

func (s *productStore) List(_ context.Context, f store.ProductFilter) ([]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Product
	for _, id := range s.productIDs {
		p := s.products[id]
		if f.ShopID != "" && p.ShopID != f.ShopID {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.AvailableOnly && !p.IsAvailable {
			continue
		}
		if f.Search != "" && !matchesSearch(p, f.Search) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	return page(out, f.Skip, f.Limit), nil
}

func matchesSearch(p *models.Product, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	return contains(p.Tags, search)
}

func (s *productStore) Replace(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return fmt.Errorf("product %s: %w", p.ID, errs.ErrNotFound)
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *productStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
	}
	delete(s.products, id)
	s.productIDs = remove(s.productIDs, id)
	return nil
}

func (s *productStore) DeleteByShop(_ context.Context, shopID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.productIDs[:0]
	for _, id := range s.productIDs {
		if s.products[id].ShopID == shopID {
			delete(s.products, id)
			continue
		}
		kept = append(kept, id)
	}
	s.productIDs = kept
	return nil
}

func (s *productStore) Categories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, id := range s.productIDs {
		cat := s.products[id].Category
		if cat != "" && !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out, nil
}

func (s *productStore) ShopIDsWithCategory(_ context.Context, category string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, id := range s.productIDs {
		p := s.products[id]
		if p.Category == category && !seen[p.ShopID] {
			seen[p.ShopID] = true
			out = append(out, p.ShopID)
		}
	}
	return out, nil
}

func (s *productStore) DecrementInventory(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product: %w", errs.ErrNotFound)
	}
	if p.Inventory == nil {
		return nil
	}
	if *p.Inventory < qty {
		return fmt.Errorf("not enough inventory for %s: %w", p.Name, errs.ErrConflict)
	}
	*p.Inventory -= qty
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *productStore) IncrementInventory(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.Inventory == nil {
		return nil
	}
	*p.Inventory += qty
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// orderStore

type orderStore Store

func (s *orderStore) Insert(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
	s.orderIDs = append(s.orderIDs, o.ID)
	return nil
}

func (s *orderStore) ByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, errs.ErrNotFound)
	}
	return cloneOrder(o), nil
}

func (s *orderStore) List(_ context.Context, f store.OrderFilter) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	// newest first, matching the Mongo sort
	for i := len(s.orderIDs) - 1; i >= 0; i-- {
		o := s.orders[s.orderIDs[i]]
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.ShopID != "" {
			if o.ShopID != f.ShopID {
				continue
			}
		} else if f.ShopIDs != nil && !contains(f.ShopIDs, o.ShopID) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return page(out, f.Skip, f.Limit), nil
}

func (s *orderStore) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, errs.ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}
