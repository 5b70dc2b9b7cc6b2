package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solemate/solemate-backend/api/controllers"
	"github.com/solemate/solemate-backend/api/middleware"
	assistantsvc "github.com/solemate/solemate-backend/internal/assistant"
	"github.com/solemate/solemate-backend/internal/auth"
	checkoutsvc "github.com/solemate/solemate-backend/internal/checkout"
	contentsvc "github.com/solemate/solemate-backend/internal/content"
	creditsvc "github.com/solemate/solemate-backend/internal/credits"
	discountsvc "github.com/solemate/solemate-backend/internal/discounts"
	ordersvc "github.com/solemate/solemate-backend/internal/orders"
	paymentsvc "github.com/solemate/solemate-backend/internal/payments"
	productsvc "github.com/solemate/solemate-backend/internal/products"
	"github.com/solemate/solemate-backend/pkg/auth/session"
	"github.com/solemate/solemate-backend/pkg/config"
	"github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/enums"
	"github.com/solemate/solemate-backend/pkg/logger"
	"github.com/solemate/solemate-backend/pkg/metrics"
	pkgredis "github.com/solemate/solemate-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	productService productsvc.Service,
	contentService contentsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
	paymentService paymentsvc.Service,
	creditService creditsvc.Service,
	discountService discountsvc.Service,
	assistantService assistantsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Storefront catalog and homepage need no session.
		r.Get("/products", controllers.ListProducts(productService, logg))
		r.Get("/products/{idOrSlug}", controllers.GetProduct(productService, logg))
		r.Get("/filters", controllers.ListFilters(productService, logg))
		r.Get("/content/homepage", controllers.Homepage(contentService, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
				With(middleware.Idempotency(redisClient, logg)).
				Post("/register", controllers.AuthRegister(authService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
				Post("/login", controllers.AuthLogin(authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		})

		// Customer surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Post("/checkout/quote", controllers.CheckoutQuote(checkoutService, logg))
			r.Post("/checkout", controllers.CheckoutPlace(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(orderService, logg))
				r.Get("/{orderId}", controllers.GetMyOrder(orderService, logg))
				r.Get("/{orderId}/payment", controllers.GetOrderPayment(paymentService, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/pending", controllers.ListPendingPayments(paymentService, logg))
				r.Post("/{paymentId}/initiate", controllers.InitiatePayment(paymentService, logg))
			})

			r.Route("/credits", func(r chi.Router) {
				r.Get("/", controllers.CreditBalance(creditService, logg))
				r.Get("/history", controllers.CreditHistory(creditService, logg))
			})

			r.Post("/discounts/validate", controllers.ValidateDiscount(discountService, logg))
		})
	})

	// Admin console surface.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
				Post("/login", controllers.AdminAuthLogin(authService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
			r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(productService, logg))
				r.Post("/", controllers.AdminCreateProduct(productService, logg))
				r.Patch("/{productId}", controllers.AdminUpdateProduct(productService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(productService, logg))
			})

			r.Route("/filters", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateFilter(productService, logg))
				r.Put("/{filterId}", controllers.AdminUpdateFilter(productService, logg))
				r.Delete("/{filterId}", controllers.AdminDeleteFilter(productService, logg))
			})

			r.Route("/content/sections", func(r chi.Router) {
				r.Get("/", controllers.AdminListSections(contentService, logg))
				r.Post("/", controllers.AdminCreateSection(contentService, logg))
				r.Put("/{sectionId}", controllers.AdminUpdateSection(contentService, logg))
				r.Delete("/{sectionId}", controllers.AdminDeleteSection(contentService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(orderService, logg))
				r.Get("/{orderId}", controllers.AdminGetOrder(orderService, logg))
				r.Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(orderService, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.AdminListPayments(paymentService, logg))
				r.Get("/{paymentId}", controllers.AdminGetPayment(paymentService, logg))
				r.Post("/{paymentId}", controllers.AdminReconcilePayment(paymentService, logg))
			})

			r.Route("/discounts", func(r chi.Router) {
				r.Get("/", controllers.AdminListDiscounts(discountService, logg))
				r.Post("/", controllers.AdminCreateDiscount(discountService, logg))
				r.Get("/{discountId}", controllers.AdminGetDiscount(discountService, logg))
				r.Patch("/{discountId}", controllers.AdminUpdateDiscount(discountService, logg))
				r.Delete("/{discountId}", controllers.AdminDeleteDiscount(discountService, logg))
			})

			r.Post("/credits/{userId}/adjust", controllers.AdminAdjustCredits(creditService, logg))

			r.Route("/assistant", func(r chi.Router) {
				r.Post("/chat", controllers.AssistantChat(assistantService, logg))
				r.Post("/extract", controllers.AssistantExtract(assistantService, logg))
				r.Get("/conversations/{conversationId}", controllers.AssistantHistory(assistantService, logg))
			})
		})
	})

	return r
}
