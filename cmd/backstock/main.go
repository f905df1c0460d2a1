package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backstock/backstock/internal/app"
	"github.com/backstock/backstock/internal/auth"
	"github.com/backstock/backstock/internal/authz"
	"github.com/backstock/backstock/internal/masterdata/branches"
	"github.com/backstock/backstock/internal/masterdata/categories"
	"github.com/backstock/backstock/internal/masterdata/products"
	"github.com/backstock/backstock/internal/masterdata/providers"
	"github.com/backstock/backstock/internal/observability"
	"github.com/backstock/backstock/internal/platform/cache"
	"github.com/backstock/backstock/internal/platform/db"
	"github.com/backstock/backstock/internal/purchases"
	"github.com/backstock/backstock/internal/roles"
	"github.com/backstock/backstock/internal/sales"
	"github.com/backstock/backstock/internal/sales/customers"
	"github.com/backstock/backstock/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := authz.NewTokenManager(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}
	revoker := authz.NewRevoker(redisClient)

	rolesRepo := roles.NewRepository(pool)
	usersRepo := users.NewRepository(pool)

	resolver := authz.NewResolver(tokens, rolesRepo, usersRepo, revoker)
	engine := authz.NewEngine()
	guard := authz.Guard{Resolver: resolver, Engine: engine, Logger: logger}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, usersRepo, tokens, revoker, logger)

	productsRepo := products.NewRepository(pool)

	params := app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Guard:   guard,
		Metrics: observability.NewMetrics(),

		AuthHandler:       auth.NewHandler(logger, authService),
		RolesHandler:      roles.NewHandler(logger, roles.NewService(rolesRepo)),
		UsersHandler:      users.NewHandler(logger, users.NewService(usersRepo)),
		CategoriesHandler: categories.NewHandler(logger, categories.NewService(categories.NewRepository(pool))),
		ProductsHandler:   products.NewHandler(logger, products.NewService(productsRepo)),
		ProvidersHandler:  providers.NewHandler(logger, providers.NewService(providers.NewRepository(pool))),
		BranchesHandler:   branches.NewHandler(logger, branches.NewService(branches.NewRepository(pool))),
		CustomersHandler:  customers.NewHandler(logger, customers.NewService(customers.NewRepository(pool))),
		SalesHandler:      sales.NewHandler(logger, sales.NewService(sales.NewRepository(pool), productsRepo)),
		PurchasesHandler:  purchases.NewHandler(logger, purchases.NewService(purchases.NewRepository(pool), productsRepo)),
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      app.NewRouter(params),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
