package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pepdine/pep-backend/api/controllers"
	"github.com/pepdine/pep-backend/api/middleware"
	"github.com/pepdine/pep-backend/internal/auth"
	"github.com/pepdine/pep-backend/internal/cart"
	"github.com/pepdine/pep-backend/internal/catalog"
	checkoutsvc "github.com/pepdine/pep-backend/internal/checkout"
	"github.com/pepdine/pep-backend/internal/coupons"
	"github.com/pepdine/pep-backend/internal/guests"
	"github.com/pepdine/pep-backend/internal/orders"
	"github.com/pepdine/pep-backend/internal/reports"
	"github.com/pepdine/pep-backend/internal/users"
	"github.com/pepdine/pep-backend/pkg/auth/session"
	"github.com/pepdine/pep-backend/pkg/config"
	"github.com/pepdine/pep-backend/pkg/enums"
	"github.com/pepdine/pep-backend/pkg/logger"
	"github.com/pepdine/pep-backend/pkg/metrics"
	pkgredis "github.com/pepdine/pep-backend/pkg/redis"
)

// Cache is the Redis surface the HTTP layer needs for idempotency keys and
// auth rate limiting. A nil Cache disables both.
type Cache interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies carries everything NewRouter wires into handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Redis    pinger
	Cache    Cache
	Sessions session.Checker
	Guests   guests.Resolver
	Location *time.Location

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Coupons  coupons.Service
	Users    users.Service
	Reports  reports.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var idemStore pkgredis.IdempotencyStore
	var limiter Cache
	if deps.Cache != nil {
		idemStore = deps.Cache
		limiter = deps.Cache
	}
	idempotent := middleware.Idempotency(idemStore, logg)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.Logging(logg),
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		r.Get("/menu", controllers.MenuList(deps.Catalog, false, logg))
		r.Get("/menu/{itemId}", controllers.MenuItem(deps.Catalog, false, logg))
		r.Get("/categories", controllers.CategoryList(deps.Catalog, false, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", controllers.Me(deps.Auth, logg))
			cartRoutes(r, deps.Cart, logg)
			r.With(idempotent).Post("/checkout", controllers.Checkout(deps.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.With(idempotent).Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
			})
		})

		r.Route("/guest/{sessionId}", func(r chi.Router) {
			r.Use(middleware.GuestSession(deps.Guests, logg))

			cartRoutes(r, deps.Cart, logg)
			r.With(idempotent).Post("/checkout", controllers.Checkout(deps.Checkout, logg))
			r.Get("/orders/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.MenuList(deps.Catalog, true, logg))
			r.Post("/", controllers.AdminCreateMenuItem(deps.Catalog, logg))
			r.Get("/{itemId}", controllers.MenuItem(deps.Catalog, true, logg))
			r.Patch("/{itemId}", controllers.AdminUpdateMenuItem(deps.Catalog, logg))
			r.Delete("/{itemId}", controllers.AdminDeleteMenuItem(deps.Catalog, logg))
			r.Put("/{itemId}/stock", controllers.AdminSetStock(deps.Catalog, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.Catalog, true, logg))
			r.Post("/", controllers.AdminCreateCategory(deps.Catalog, logg))
			r.Patch("/{categoryId}", controllers.AdminUpdateCategory(deps.Catalog, logg))
		})

		r.Get("/coupons", controllers.AdminListCoupons(deps.Coupons, logg))
		r.With(idempotent).Post("/coupons", controllers.AdminCreateCoupon(deps.Coupons, logg))
		r.Delete("/coupons/{couponId}", controllers.AdminDeactivateCoupon(deps.Coupons, logg))

		r.Get("/users", controllers.AdminListUsers(deps.Users, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
		})

		r.Get("/reports/sales", controllers.AdminSalesReport(deps.Reports, deps.Location, logg))
	})

	return r
}

func cartRoutes(r chi.Router, svc cart.Service, logg *logger.Logger) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", controllers.CartFetch(svc, logg))
		r.Delete("/", controllers.CartClear(svc, logg))
		r.Post("/items", controllers.CartAddItem(svc, logg))
		r.Put("/items/{itemId}", controllers.CartUpdateItem(svc, logg))
		r.Delete("/items/{itemId}", controllers.CartRemoveItem(svc, logg))
		r.Post("/coupon", controllers.CartApplyCoupon(svc, logg))
		r.Delete("/coupon", controllers.CartRemoveCoupon(svc, logg))
	})
}
