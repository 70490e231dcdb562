package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/localhands/pkg/auth"
	"github.com/example/localhands/pkg/catalog"
	"github.com/example/localhands/pkg/config"
	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/orders"
	"github.com/example/localhands/pkg/repository/memory"
)

type testEnv struct {
	router http.Handler
	store  *memory.Store
	tokens *auth.TokenManager
}

type deniedGoogle struct{}

func (deniedGoogle) Verify(context.Context, string) (*auth.GoogleIdentity, error) {
	return nil, fmt.Errorf("invalid google token: %w", errs.ErrUnauthenticated)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.New()
	logger := zap.NewNop()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	authSvc := auth.NewService(st.Users(), tokens, deniedGoogle{}, logger)
	catalogSvc := catalog.NewService(st.Shops(), st.Products(), st.Users(), nil, logger)
	orderSvc := orders.NewService(st.Orders(), st.Products(), st.Shops(), logger)

	cfg := &config.Config{}
	gw := NewGateway(cfg, logger, authSvc, catalogSvc, orderSvc)
	gw.SetupRoutes()

	return &testEnv{router: gw.Router(), store: st, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// seed inserts a user directly and mints a token for it.
func (e *testEnv) seed(t *testing.T, id string, role models.Role) (*models.User, string) {
	t.Helper()
	u := &models.User{
		ID:       id,
		Email:    id + "@example.com",
		Role:     role,
		Shops:    []string{},
		IsActive: true,
	}
	require.NoError(t, e.store.Users().Insert(context.Background(), u))
	token, err := e.tokens.Issue(u)
	require.NoError(t, err)
	return u, token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session struct {
		AccessToken string       `json:"access_token"`
		User        *models.User `json:"user"`
	}
	decode(t, rec, &session)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, models.RoleCustomer, session.User.Role)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"email": "alice@example.com", "password": "x",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("password grant json", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/token", "", gin.H{
			"username": "alice@example.com", "password": "hunter22",
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("wrong password unauthorized", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/token", "", gin.H{
			"username": "alice@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me requires bearer", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

		rec = env.do(t, http.MethodGet, "/api/users/me", session.AccessToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("password never serialized", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/users/me", session.AccessToken, nil)
		assert.NotContains(t, rec.Body.String(), "password")
	})
}

func TestRoleManagement(t *testing.T) {
	env := newTestEnv(t)
	target, targetToken := env.seed(t, "target", models.RoleCustomer)
	_, rootToken := env.seed(t, "root", models.RoleSuperadmin)

	t.Run("customer cannot set roles", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/users/"+target.ID+"/role", targetToken, gin.H{"role": "superadmin"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("superadmin promotes", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/users/"+target.ID+"/role", rootToken, gin.H{"role": "shop_admin"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var u models.User
		decode(t, rec, &u)
		assert.Equal(t, models.RoleShopAdmin, u.Role)
	})

	t.Run("invalid role conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/users/"+target.ID+"/role", rootToken, gin.H{"role": "owner"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestShopAndProductFlow(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.seed(t, "owner", models.RoleShopAdmin)
	_, custToken := env.seed(t, "cust", models.RoleCustomer)

	t.Run("customer cannot create shops", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/shops", custToken, gin.H{"name": "Nope", "slug": "nope"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	var shop models.Shop
	t.Run("shop admin creates", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/shops", ownerToken, gin.H{"name": "Corner Bakery", "slug": "corner-bakery"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &shop)
		assert.Equal(t, "corner-bakery", shop.Slug)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/shops", ownerToken, gin.H{"name": "Copy", "slug": "corner-bakery"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("public lookup by slug", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/shops/corner-bakery", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/shops/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	var product models.Product
	t.Run("product create and list", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/products", ownerToken, gin.H{
			"shop_id":  shop.ID,
			"name":     "Sourdough",
			"category": "bread",
			"price":    6.0,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &product)
		assert.True(t, product.IsAvailable)

		rec = env.do(t, http.MethodGet, "/api/products?shop_id="+shop.ID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []models.Product
		decode(t, rec, &list)
		assert.Len(t, list, 1)
	})

	t.Run("missing shop_id on create rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/products", ownerToken, gin.H{
			"name": "Orphan", "category": "bread",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("categories listed", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/categories", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var cats []string
		decode(t, rec, &cats)
		assert.Equal(t, []string{"bread"}, cats)
	})

	t.Run("admin management", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/shops/"+shop.ID+"/admins", ownerToken, gin.H{"admin_email": "cust@example.com"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated models.Shop
		decode(t, rec, &updated)
		assert.Contains(t, updated.AdminIDs, "cust")

		rec = env.do(t, http.MethodDelete, "/api/shops/"+shop.ID+"/admins/cust", ownerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.seed(t, "owner", models.RoleShopAdmin)
	_, custToken := env.seed(t, "cust", models.RoleCustomer)

	var shop models.Shop
	rec := env.do(t, http.MethodPost, "/api/shops", ownerToken, gin.H{"name": "Corner Bakery", "slug": "corner-bakery"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &shop)

	var product models.Product
	rec = env.do(t, http.MethodPost, "/api/products", ownerToken, gin.H{
		"shop_id":   shop.ID,
		"name":      "Cake",
		"category":  "bread",
		"price":     30.0,
		"inventory": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, &product)

	orderBody := gin.H{
		"shop_id": shop.ID,
		"items":   []gin.H{{"product_id": product.ID, "quantity": 2}},
		"delivery_info": gin.H{
			"method": "pickup",
		},
	}

	t.Run("requires authentication", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/orders", "", orderBody)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var order models.Order
	t.Run("customer places order", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/orders", custToken, orderBody)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &order)
		assert.Equal(t, 60.0, order.Total)
		assert.Equal(t, models.OrderPending, order.Status)
	})

	t.Run("oversell conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/orders", custToken, orderBody)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("customer lists own orders", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/orders", custToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []models.Order
		decode(t, rec, &list)
		assert.Len(t, list, 1)
	})

	t.Run("shop admin advances status", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/orders/"+order.ID+"/status", ownerToken, gin.H{"status": "processing"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated models.Order
		decode(t, rec, &updated)
		assert.Equal(t, models.OrderProcessing, updated.Status)
	})

	t.Run("customer cannot advance status", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/orders/"+order.ID+"/status", custToken, gin.H{"status": "shipped"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/orders", custToken, gin.H{"shop_id": shop.ID})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
