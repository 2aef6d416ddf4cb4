package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/shopfront/backend/internal/application/cart"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	identityapp "github.com/shopfront/backend/internal/application/identity"
	orderapp "github.com/shopfront/backend/internal/application/order"
	reportapp "github.com/shopfront/backend/internal/application/report"
	reviewapp "github.com/shopfront/backend/internal/application/review"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/order"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/event"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/interfaces/http/router"
	"github.com/shopfront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// dashboardStats reads revenue as the string decimal.Decimal encodes to
type dashboardStats struct {
	TotalProducts int64  `json:"total_products"`
	TotalUsers    int64  `json:"total_users"`
	TotalOrders   int64  `json:"total_orders"`
	TotalRevenue  string `json:"total_revenue"`
}

type pdfRenderer struct{}

func (pdfRenderer) RenderInvoice(_ context.Context, o *order.Order, _ *identity.User) ([]byte, error) {
	return []byte("%PDF-1.4 " + o.ID.String()), nil
}

type shopAPI struct {
	engine *gin.Engine
	users  *persistence.GormUserRepository
}

func newShopAPI(t *testing.T) *shopAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	log := zap.NewNop()
	db := testutil.NewSQLiteDB(t)

	userRepo := persistence.NewGormUserRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	cartRepo := persistence.NewGormCartRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	reviewRepo := persistence.NewGormReviewRepository(db)
	reportRepo := persistence.NewGormReportRepository(db)

	images, err := storage.NewLocalImageStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "router-test-secret-long-enough-for-hs256",
		Issuer:     "shop-test",
		Expiration: time.Hour,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	bus := event.NewInMemoryEventBus(log)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, log)
	productService := catalogapp.NewProductService(productRepo, reportRepo, reviewRepo, images, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, log)
	orderService := orderapp.NewOrderService(persistence.NewGormTransactionScope(db), orderRepo, productRepo, cartRepo, userRepo, log)
	orderService.SetInvoiceRenderer(pdfRenderer{})
	orderService.SetEventPublisher(bus)
	reviewService := reviewapp.NewReviewService(reviewRepo, orderRepo, productRepo, log)
	dashboardService := reportapp.NewDashboardService(reportRepo, cache.NewInMemoryStatsCache(), log)
	bus.Subscribe(reportapp.NewCacheInvalidator(dashboardService, log))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.NoRoute(middleware.NoRoute())

	handlers := router.Handlers{
		Users:     handler.NewUserHandler(authService, userService),
		Products:  handler.NewProductHandler(productService),
		Cart:      handler.NewCartHandler(cartService),
		Orders:    handler.NewOrderHandler(orderService, dashboardService),
		Reviews:   handler.NewReviewHandler(reviewService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}
	guards := router.Guards{
		Authenticate: middleware.Authenticate(middleware.AuthConfig{
			JWTService: jwtService,
			Blacklist:  blacklist,
			Users:      userRepo,
			Logger:     log,
		}),
		RequireAdmin: middleware.RequireAdmin(),
	}
	router.NewRouter(engine).Register(router.ShopRoutes(handlers, guards)...).Setup()

	return &shopAPI{engine: engine, users: userRepo}
}

func (a *shopAPI) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

// register creates an account through the API and returns its token
func (a *shopAPI) register(t *testing.T, name, email string) identityapp.AuthResult {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	return decode[identityapp.AuthResult](t, env)
}

// admin registers an account and promotes it directly in the database
func (a *shopAPI) admin(t *testing.T) string {
	t.Helper()
	result := a.register(t, "Admin", "admin@example.com")
	ctx := context.Background()
	u, err := a.users.FindByID(ctx, result.User.ID)
	require.NoError(t, err)
	require.NoError(t, u.SetRole(identity.RoleAdmin))
	require.NoError(t, a.users.Save(ctx, u))
	return result.Token
}

func TestShopRoutes_PurchaseFlow(t *testing.T) {
	api := newShopAPI(t)
	adminToken := api.admin(t)
	buyer := api.register(t, "Buyer", "buyer@example.com")

	// catalog
	status, env := api.do(t, http.MethodPost, "/api/v1/products", adminToken, map[string]any{
		"name": "Desk Lamp", "description": "Warm light", "price": 19.99,
		"stock": 5, "category": "lighting", "is_featured": true,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	product := decode[catalogapp.ProductResponse](t, env)

	status, env = api.do(t, http.MethodPost, "/api/v1/products", buyer.Token, map[string]any{
		"name": "Nope", "price": 1, "category": "x",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, dto.ErrCodeForbidden, env.Error.Code)

	status, env = api.do(t, http.MethodGet, "/api/v1/products?keyword=lamp", "", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[catalogapp.ProductListResult](t, env)
	assert.Equal(t, int64(1), list.TotalProducts)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.TotalPages)

	// cart
	status, env = api.do(t, http.MethodPost, "/api/v1/cart", buyer.Token, map[string]any{
		"product_id": product.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	cart := decode[cartapp.CartResponse](t, env)
	assert.Equal(t, 2, cart.TotalQuantity)
	assert.Equal(t, "39.98", cart.Total.String())

	status, env = api.do(t, http.MethodPost, "/api/v1/cart", buyer.Token, map[string]any{
		"product_id": product.ID, "quantity": 10,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrCodeInsufficientStock, env.Error.Code)

	// checkout
	status, env = api.do(t, http.MethodPost, "/api/v1/orders", buyer.Token, map[string]any{
		"shipping_address": map[string]any{"name": "Buyer", "phone": "0900", "address": "1 Main St"},
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	placed := decode[orderapp.OrderResponse](t, env)
	assert.Equal(t, "pending", placed.Status)
	assert.Equal(t, "cod", placed.PaymentMethod)
	assert.Equal(t, "39.98", placed.TotalAmount.String())

	status, env = api.do(t, http.MethodGet, "/api/v1/products/"+product.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, decode[catalogapp.ProductResponse](t, env).Stock)

	status, env = api.do(t, http.MethodGet, "/api/v1/cart", buyer.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[cartapp.CartResponse](t, env).Items)

	// nothing to review before shipment
	status, env = api.do(t, http.MethodGet, "/api/v1/reviews/order/"+placed.ID.String(), buyer.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]reviewapp.ReviewableItem](t, env))

	// fulfilment
	status, env = api.do(t, http.MethodPut, "/api/v1/orders/"+placed.ID.String()+"/status", buyer.Token, map[string]any{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.do(t, http.MethodPut, "/api/v1/orders/"+placed.ID.String()+"/status", adminToken, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusOK, status, env.Error)
	shipped := decode[orderapp.OrderResponse](t, env)
	assert.True(t, shipped.IsPaid)
	assert.NotNil(t, shipped.PaidAt)

	status, env = api.do(t, http.MethodPut, "/api/v1/orders/cancel/"+placed.ID.String(), buyer.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrCodeInvalidInput, env.Error.Code)

	// review
	review := map[string]any{"order_id": placed.ID, "product_id": product.ID, "rating": 5, "comment": "Bright"}
	status, env = api.do(t, http.MethodPost, "/api/v1/reviews", buyer.Token, review)
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = api.do(t, http.MethodPost, "/api/v1/reviews", buyer.Token, review)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrCodeDuplicateReview, env.Error.Code)

	status, env = api.do(t, http.MethodGet, "/api/v1/reviews/product/"+product.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	reviews := decode[[]reviewapp.ReviewResponse](t, env)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Buyer", reviews[0].UserName)

	// dashboard
	status, _ = api.do(t, http.MethodGet, "/api/v1/dashboard/stats", buyer.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.do(t, http.MethodGet, "/api/v1/dashboard/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	stats := decode[dashboardStats](t, env)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, "39.98", stats.TotalRevenue)

	status, env = api.do(t, http.MethodGet, "/api/v1/dashboard/monthly-revenue?year=abc", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrCodeInvalidInput, env.Error.Code)

	// invoice
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+placed.ID.String()+"/invoice", nil)
	req.Header.Set("Authorization", "Bearer "+buyer.Token)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-"+placed.ID.String())
}

func TestShopRoutes_AuthBoundaries(t *testing.T) {
	api := newShopAPI(t)

	status, env := api.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrCodeUnauthorized, env.Error.Code)

	status, env = api.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"name": "X", "email": "not-an-email", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	fields := make([]string, len(env.Error.Details))
	for i, d := range env.Error.Details {
		fields[i] = d.Field
	}
	assert.ElementsMatch(t, []string{"email", "password"}, fields)

	user := api.register(t, "Buyer", "buyer@example.com")

	status, _ = api.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]any{
		"name": "Again", "email": "buyer@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, env = api.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]any{
		"email": "buyer@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", env.Error.Message)

	status, env = api.do(t, http.MethodGet, "/api/v1/users/profile", user.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "buyer@example.com", decode[identityapp.UserResponse](t, env).Email)

	status, _ = api.do(t, http.MethodGet, "/api/v1/users", user.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", user.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(t, http.MethodPost, "/api/v1/users/logout", user.Token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = api.do(t, http.MethodGet, "/api/v1/users/profile", user.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrCodeTokenRevoked, env.Error.Code)

	status, env = api.do(t, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)
}

func TestShopRoutes_AdminUserManagement(t *testing.T) {
	api := newShopAPI(t)
	adminToken := api.admin(t)
	customer := api.register(t, "Customer", "customer@example.com")

	status, env := api.do(t, http.MethodGet, "/api/v1/users?role=user", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	users := decode[identityapp.UserListResult](t, env)
	require.Len(t, users.Users, 1)
	assert.Equal(t, customer.User.ID, users.Users[0].ID)

	status, env = api.do(t, http.MethodPut, "/api/v1/users/"+customer.User.ID.String(), adminToken, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.True(t, decode[identityapp.UserResponse](t, env).IsAdmin)

	status, _ = api.do(t, http.MethodDelete, "/api/v1/users/"+customer.User.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	// the deleted user's token no longer authenticates
	status, env = api.do(t, http.MethodGet, "/api/v1/cart", customer.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Not authorized, user not found", env.Error.Message)
}
