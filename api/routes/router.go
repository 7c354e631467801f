package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amendez21/storefront-backend/api/controllers"
	"github.com/amendez21/storefront-backend/api/middleware"
	addresssvc "github.com/amendez21/storefront-backend/internal/addresses"
	authsvc "github.com/amendez21/storefront-backend/internal/auth"
	cartsvc "github.com/amendez21/storefront-backend/internal/cart"
	categorysvc "github.com/amendez21/storefront-backend/internal/categories"
	checkoutsvc "github.com/amendez21/storefront-backend/internal/checkout"
	ordersvc "github.com/amendez21/storefront-backend/internal/orders"
	productsvc "github.com/amendez21/storefront-backend/internal/products"
	userssvc "github.com/amendez21/storefront-backend/internal/users"
	"github.com/amendez21/storefront-backend/pkg/auth/session"
	"github.com/amendez21/storefront-backend/pkg/config"
	"github.com/amendez21/storefront-backend/pkg/db"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"github.com/amendez21/storefront-backend/pkg/metrics"
	"github.com/amendez21/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	Metrics     *metrics.HTTPMetrics
	MetricsGath prometheus.Gatherer
	AuthService authsvc.Service
	UserService userssvc.Service
	Products    productsvc.Service
	Categories  categorysvc.Service
	Carts       *cartsvc.Service
	Checkout    checkoutsvc.Service
	Orders      ordersvc.Service
	Addresses   addresssvc.Service
}

// NewRouter assembles the storefront HTTP surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.MetricsGath != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.MetricsGath, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
			Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).
			Post("/register", controllers.AuthRegister(d.UserService, d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, d.Sessions, logg)).
			Post("/logout", controllers.AuthLogout(d.AuthService, logg))
	})

	// Public catalog and guest cart surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(d.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(d.Products, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(d.Categories, logg))
			r.Get("/{categoryId}", controllers.CategoryDetail(d.Categories, logg))
		})
		r.Get("/search/suggestions", controllers.SearchSuggestions(d.Products, logg))

		// Cart requests resolve to a per-account key when a valid bearer
		// token rides along, so the same endpoints serve guests and
		// signed-in users.
		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, d.Sessions, logg))

			r.Get("/", controllers.CartFetch(d.Carts, logg))
			r.Delete("/", controllers.CartClear(d.Carts, logg))
			r.Post("/items", controllers.CartAddItem(d.Carts, d.Products, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(d.Carts, d.Products, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(d.Carts, logg))
		})
	})

	// Authenticated surface.
	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Get("/", controllers.UserProfile(d.UserService, logg))
		r.Post("/checkout", controllers.Checkout(d.Checkout, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(d.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(d.Orders, logg))
		})
		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(d.Addresses, logg))
			r.Post("/", controllers.AddressCreate(d.Addresses, logg))
			r.Get("/{addressId}", controllers.AddressDetail(d.Addresses, logg))
			r.Patch("/{addressId}", controllers.AddressUpdate(d.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(d.Addresses, logg))
		})
	})

	return r
}
