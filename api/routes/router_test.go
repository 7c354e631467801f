package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	addresssvc "github.com/amendez21/storefront-backend/internal/addresses"
	authsvc "github.com/amendez21/storefront-backend/internal/auth"
	cartsvc "github.com/amendez21/storefront-backend/internal/cart"
	categorysvc "github.com/amendez21/storefront-backend/internal/categories"
	ordersvc "github.com/amendez21/storefront-backend/internal/orders"
	productsvc "github.com/amendez21/storefront-backend/internal/products"
	userssvc "github.com/amendez21/storefront-backend/internal/users"
	pkgAuth "github.com/amendez21/storefront-backend/pkg/auth"
	"github.com/amendez21/storefront-backend/pkg/config"
	"github.com/amendez21/storefront-backend/pkg/db/models"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"github.com/amendez21/storefront-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Refresh(ctx context.Context, req authsvc.RefreshRequest) (*authsvc.RefreshResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubUserService struct{}

func (stubUserService) Register(ctx context.Context, input userssvc.RegisterInput) (*userssvc.UserDTO, error) {
	panic("unimplemented")
}

func (stubUserService) Profile(ctx context.Context, userID uint) (*userssvc.UserDTO, error) {
	return &userssvc.UserDTO{ID: userID, Email: "shopper@example.com"}, nil
}

type stubProductService struct{}

func (stubProductService) List(ctx context.Context, input productsvc.ListInput) (*productsvc.ListResult, error) {
	return &productsvc.ListResult{Products: []productsvc.ProductDTO{}, Page: 1, Limit: input.Page.Limit}, nil
}

func (stubProductService) GetByID(ctx context.Context, id uint) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) GetBySlug(ctx context.Context, slug string) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) Suggestions(ctx context.Context, query string) ([]productsvc.Suggestion, error) {
	return []productsvc.Suggestion{}, nil
}

func (stubProductService) Lookup(ctx context.Context, id uint) (*models.Product, error) {
	return &models.Product{ID: id, Name: "Espresso Blend", Price: decimal.RequireFromString("14.50"), Stock: 10}, nil
}

type stubCategoryService struct{}

func (stubCategoryService) List(ctx context.Context) ([]categorysvc.CategoryDTO, error) {
	return []categorysvc.CategoryDTO{}, nil
}

func (stubCategoryService) GetByID(ctx context.Context, id uint) (*categorysvc.CategoryDTO, error) {
	panic("unimplemented")
}

func (stubCategoryService) GetBySlug(ctx context.Context, slug string) (*categorysvc.CategoryDTO, error) {
	panic("unimplemented")
}

type stubCheckoutService struct {
	userIDs  []uint
	cartKeys []string
}

func (s *stubCheckoutService) Checkout(ctx context.Context, userID uint, cartKey string) (*ordersvc.OrderDTO, error) {
	s.userIDs = append(s.userIDs, userID)
	s.cartKeys = append(s.cartKeys, cartKey)
	return &ordersvc.OrderDTO{ID: 1, UserID: userID, Status: "created"}, nil
}

type stubOrderService struct{}

func (stubOrderService) ListByUser(ctx context.Context, userID uint, page pagination.Params) (*ordersvc.ListResult, error) {
	return &ordersvc.ListResult{Orders: []ordersvc.OrderDTO{}, Page: 1, Limit: page.Limit}, nil
}

func (stubOrderService) GetForUser(ctx context.Context, orderID, userID uint) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

type stubAddressService struct{}

func (stubAddressService) List(ctx context.Context, userID uint) ([]addresssvc.AddressDTO, error) {
	return []addresssvc.AddressDTO{}, nil
}

func (stubAddressService) Get(ctx context.Context, addressID, userID uint) (*addresssvc.AddressDTO, error) {
	panic("unimplemented")
}

func (stubAddressService) Create(ctx context.Context, userID uint, input addresssvc.CreateAddressInput) (*addresssvc.AddressDTO, error) {
	panic("unimplemented")
}

func (stubAddressService) Update(ctx context.Context, addressID, userID uint, input addresssvc.UpdateAddressInput) (*addresssvc.AddressDTO, error) {
	panic("unimplemented")
}

func (stubAddressService) Delete(ctx context.Context, addressID, userID uint) error {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, gatherer prometheus.Gatherer) (http.Handler, *stubCheckoutService) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	cartService, err := cartsvc.NewService(cartsvc.NewMemoryPersister(), logg)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	checkout := &stubCheckoutService{}
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          stubPinger{},
		Sessions:    stubSessionChecker{},
		MetricsGath: gatherer,
		AuthService: stubAuthService{},
		UserService: stubUserService{},
		Products:    stubProductService{},
		Categories:  stubCategoryService{},
		Carts:       cartService,
		Checkout:    checkout,
		Orders:      stubOrderService{},
		Addresses:   stubAddressService{},
	}), checkout
}

func mintToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: 7,
		Email:  "shopper@example.com",
		JTI:    "access-777",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicCatalogRoutes(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), nil)

	for _, path := range []string{"/api/v1/products", "/api/v1/categories", "/api/v1/search/suggestions?q=espresso"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestGuestCartRequiresKey(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without cart key got %d", resp.Code)
	}
}

func TestGuestCartFetchWithKey(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Cart-Key", "guest-abc123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with cart key got %d", resp.Code)
	}
}

func TestSignedInCartFlowsIntoCheckout(t *testing.T) {
	cfg := testConfig()
	router, checkout := newTestRouter(t, cfg, nil)
	token := mintToken(t, cfg)

	add := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"productId": 42, "quantity": 2}`))
	add.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, add)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 adding item with token got %d", resp.Code)
	}

	fetch := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	fetch.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, fetch)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching cart with token got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			TotalItems int `json:"totalItems"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if envelope.Data.TotalItems != 2 {
		t.Fatalf("expected 2 items in the account cart got %d", envelope.Data.TotalItems)
	}

	co := httptest.NewRequest(http.MethodPost, "/api/v1/me/checkout", nil)
	co.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, co)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 from checkout got %d", resp.Code)
	}
	if len(checkout.cartKeys) != 1 || checkout.cartKeys[0] != "user-7" {
		t.Fatalf("expected checkout against key user-7 got %v", checkout.cartKeys)
	}
	if checkout.userIDs[0] != 7 {
		t.Fatalf("expected checkout for user 7 got %d", checkout.userIDs[0])
	}
}

func TestCartRejectsInvalidBearerToken(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	req.Header.Set("X-Cart-Key", "guest-abc123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token on the cart group got %d", resp.Code)
	}
}

func TestGuestCannotAddressAccountCartKey(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Cart-Key", "user-7")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an account-prefixed guest key got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), nil)

	for _, path := range []string{"/api/v1/me", "/api/v1/me/orders", "/api/v1/me/addresses"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token got %d", path, resp.Code)
		}
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router, _ := newTestRouter(t, cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestLogoutRequiresJWT(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsEndpointOnlyWithGatherer(t *testing.T) {
	without, _ := newTestRouter(t, testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	without.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without gatherer got %d", resp.Code)
	}

	with, _ := newTestRouter(t, testConfig(), prometheus.NewRegistry())
	resp = httptest.NewRecorder()
	with.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with gatherer got %d", resp.Code)
	}
}
