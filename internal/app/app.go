package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/GlebRadaev/campusmart/internal/config"
	"github.com/GlebRadaev/campusmart/internal/handlers"
	"github.com/GlebRadaev/campusmart/internal/metrics"
	"github.com/GlebRadaev/campusmart/internal/pg"
	"github.com/GlebRadaev/campusmart/internal/repo"
	"github.com/GlebRadaev/campusmart/internal/service"
	"github.com/GlebRadaev/campusmart/pkg/auth"
	"github.com/GlebRadaev/campusmart/pkg/cache"
	"github.com/GlebRadaev/campusmart/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg   *config.Config
	api   *handlers.Handlers
	srv   *service.Services
	repo  *repo.Repositories
	pool  *pgxpool.Pool
	cache *cache.Client

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(ctx, pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)
	conn := pg.New(pool)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	opts := service.Options{
		JWTService:      jwtService,
		FeaturedTTL:     cfg.FeaturedTTL,
		CheckoutRetries: cfg.CheckoutRetries,
		Metrics:         metrics.NewCheckoutMetrics(registry),
	}
	if a.cache = connectCache(ctx, cfg); a.cache != nil {
		opts.Cache = a.cache
	}

	a.cfg = cfg
	a.pool = pool
	a.repo = repo.New(conn, txManager)
	a.srv = service.New(a.repo, txManager, opts)
	a.api = handlers.New(a.srv, jwtService, registry)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}
	a.closeOnDone(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// connectCache returns nil when no Redis URL is configured or Redis is
// unreachable; the catalog then reads straight from Postgres.
func connectCache(ctx context.Context, cfg *config.Config) *cache.Client {
	if cfg.RedisURL == "" {
		zap.L().Info("redis url not set, catalog cache disabled")
		return nil
	}
	client, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		zap.L().Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		return nil
	}
	return client
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

// closeOnDone releases the cache and database pool once ctx is cancelled.
func (a *Application) closeOnDone(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		if a.cache != nil {
			if err := a.cache.Close(); err != nil {
				zap.L().Warn("closing redis client", zap.Error(err))
			}
		}
		a.pool.Close()
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
