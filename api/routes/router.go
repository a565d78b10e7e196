package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bloomhaus/bloomhaus-backend/api/controllers"
	"github.com/bloomhaus/bloomhaus-backend/api/middleware"
	"github.com/bloomhaus/bloomhaus-backend/internal/admin"
	"github.com/bloomhaus/bloomhaus-backend/internal/auth"
	"github.com/bloomhaus/bloomhaus-backend/internal/fulfillment"
	"github.com/bloomhaus/bloomhaus-backend/internal/nurseries"
	"github.com/bloomhaus/bloomhaus-backend/internal/orders"
	"github.com/bloomhaus/bloomhaus-backend/internal/products"
	"github.com/bloomhaus/bloomhaus-backend/pkg/auth/session"
	"github.com/bloomhaus/bloomhaus-backend/pkg/config"
	"github.com/bloomhaus/bloomhaus-backend/pkg/db"
	"github.com/bloomhaus/bloomhaus-backend/pkg/enums"
	"github.com/bloomhaus/bloomhaus-backend/pkg/logger"
	"github.com/bloomhaus/bloomhaus-backend/pkg/redis"
)

// Deps bundles everything the HTTP tree needs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Sessions     session.AccessSessionChecker
	Auth         auth.Service
	Products     products.Service
	Nurseries    nurseries.Service
	Orders       orders.Service
	Fulfillments fulfillment.Service
	Admin        admin.Service
}

// NewRouter assembles the full API surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogList(d.Products, logg))
			r.Get("/products/{slug}", controllers.CatalogDetail(d.Products, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.Idempotency(d.Redis, logg)).Post("/register", controllers.AuthRegister(d.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
				r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
				r.Get("/me", controllers.AuthMe(d.Auth, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Use(middleware.Idempotency(d.Redis, logg))

			r.Post("/", controllers.OrderCreate(d.Orders, logg))
			r.Get("/me", controllers.OrderListMine(d.Orders, logg))
			r.Get("/me/{orderId}", controllers.OrderDetailMine(d.Orders, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin.String(), enums.UserRoleSuperAdmin.String()))

				r.Get("/", controllers.AdminOrderList(d.Orders, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(d.Orders, logg))
				r.Patch("/{orderId}", controllers.AdminOrderUpdateStatus(d.Orders, logg))
				r.Get("/{orderId}/allocation-suggestions", controllers.AdminAllocationSuggestions(d.Fulfillments, logg))
				r.Post("/{orderId}/allocate", controllers.AdminAllocate(d.Fulfillments, logg))
				r.Post("/{orderId}/confirm", controllers.AdminConfirm(d.Fulfillments, logg))
				r.Post("/fulfillments/{fulfillmentId}/delivery-contact", controllers.AdminDeliveryContact(d.Fulfillments, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin.String(), enums.UserRoleSuperAdmin.String()))
			r.Use(middleware.Idempotency(d.Redis, logg))

			r.Route("/nurseries", func(r chi.Router) {
				r.Get("/", controllers.AdminNurseryList(d.Nurseries, logg))
				r.Post("/", controllers.AdminNurseryCreate(d.Nurseries, logg))
				r.Get("/{nurseryId}", controllers.AdminNurseryDetail(d.Nurseries, logg))
				r.Patch("/{nurseryId}", controllers.AdminNurseryUpdate(d.Nurseries, logg))
				r.Delete("/{nurseryId}", controllers.AdminNurseryDelete(d.Nurseries, logg))
				r.Get("/{nurseryId}/inventory", controllers.AdminNurseryStock(d.Nurseries, logg))
				r.Put("/{nurseryId}/inventory/{productId}", controllers.AdminNurseryUpsertStock(d.Nurseries, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductList(d.Products, logg))
				r.Post("/", controllers.AdminProductCreate(d.Products, logg))
				r.Patch("/{productId}", controllers.AdminProductUpdate(d.Products, logg))
			})
		})

		r.Route("/super-admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Use(middleware.RequireRole(logg, enums.UserRoleSuperAdmin.String()))

			r.Get("/metrics", controllers.SuperAdminMetrics(d.Admin, logg))
			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.SuperAdminUserList(d.Admin, logg))
				r.Post("/", controllers.SuperAdminUserCreate(d.Admin, logg))
				r.Get("/{userId}", controllers.SuperAdminUserDetail(d.Admin, logg))
				r.Patch("/{userId}/role", controllers.SuperAdminUserUpdateRole(d.Admin, logg))
				r.Delete("/{userId}", controllers.SuperAdminUserDelete(d.Admin, logg))
			})
		})
	})

	return r
}
