package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/solemate/solemate-backend/api/routes"
	"github.com/solemate/solemate-backend/internal/assistant"
	"github.com/solemate/solemate-backend/internal/auth"
	"github.com/solemate/solemate-backend/internal/checkout"
	"github.com/solemate/solemate-backend/internal/content"
	credit "github.com/solemate/solemate-backend/internal/credits"
	discount "github.com/solemate/solemate-backend/internal/discounts"
	notification "github.com/solemate/solemate-backend/internal/notifications"
	order "github.com/solemate/solemate-backend/internal/orders"
	payment "github.com/solemate/solemate-backend/internal/payments"
	product "github.com/solemate/solemate-backend/internal/products"
	"github.com/solemate/solemate-backend/internal/users"
	"github.com/solemate/solemate-backend/pkg/auth/session"
	"github.com/solemate/solemate-backend/pkg/config"
	"github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/logger"
	"github.com/solemate/solemate-backend/pkg/metrics"
	"github.com/solemate/solemate-backend/pkg/migrate"
	"github.com/solemate/solemate-backend/pkg/openai"
	"github.com/solemate/solemate-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := product.NewService(product.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	contentService, err := content.NewService(content.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create content service", err)
		os.Exit(1)
	}

	creditService, err := credit.NewService(credit.ServiceParams{
		DB:         dbClient,
		Repository: credit.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create credit service", err)
		os.Exit(1)
	}

	discountService, err := discount.NewService(discount.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create discount service", err)
		os.Exit(1)
	}

	orderRepo := order.NewRepository(dbClient.DB())
	orderService, err := order.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	notifier := notification.NewService(notification.NewRepository(dbClient.DB()), logg)

	paymentService, err := payment.NewService(payment.ServiceParams{
		DB:         dbClient,
		Repository: payment.NewRepository(dbClient.DB()),
		Orders:     orderRepo,
		Users:      userRepo,
		Emitter:    notifier,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Config:    cfg.Checkout,
		DB:        dbClient,
		Products:  product.NewRepository(dbClient.DB()),
		Orders:    orderRepo,
		Payments:  paymentService,
		Credits:   creditService,
		Discounts: discountService,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	assistantService, err := assistant.NewService(assistant.ServiceParams{
		Repository: assistant.NewRepository(dbClient.DB()),
		Products:   productService,
		Model:      openai.NewClient(cfg.OpenAI),
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create assistant service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			httpMetrics,
			authService,
			productService,
			contentService,
			checkoutService,
			orderService,
			paymentService,
			creditService,
			discountService,
			assistantService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
