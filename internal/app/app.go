package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/carbonledger/internal/cache"
	"github.com/GlebRadaev/carbonledger/internal/config"
	"github.com/GlebRadaev/carbonledger/internal/events"
	"github.com/GlebRadaev/carbonledger/internal/handlers"
	"github.com/GlebRadaev/carbonledger/internal/pg"
	"github.com/GlebRadaev/carbonledger/internal/repo"
	"github.com/GlebRadaev/carbonledger/internal/service"
	"github.com/GlebRadaev/carbonledger/internal/sweep"
	"github.com/GlebRadaev/carbonledger/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg     *config.Config
	api     *handlers.Handlers
	srv     *service.Services
	repo    *repo.Repositories
	gateway *events.Gateway
	sweeper *sweep.Service

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
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	conn := pg.New(pool)
	a.cfg = cfg
	a.repo = repo.New(conn, txManager)

	deps := service.Deps{
		TXManager:     txManager,
		CreditAddress: cfg.CreditAddress,
	}
	if cfg.RedisAddress != "" {
		redisClient, err := getRedis(ctx, cfg)
		if err != nil {
			zap.L().Error("redis connect failed: ", zap.Error(err))
			return fmt.Errorf("can't connect to redis: %w", err)
		}
		a.gateway = events.NewGateway(redisClient, consumerName())
		deps.Cache = cache.New(redisClient)
		deps.Publisher = a.gateway
	}

	a.srv = service.New(a.repo, deps)
	a.api = handlers.New(a.srv)
	a.sweeper = sweep.New(a.repo.ListingRepo, a.srv.AuctionService, a.srv.SettlementService, cfg.SweepInterval)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startEventGateway(ctx)
	a.startSweep(ctx)

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

func getRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil {
		return "carbonledger"
	}
	return host
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
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
		if err := server.ListenAndServe(); err != nil {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startEventGateway(ctx context.Context) {
	if a.gateway == nil {
		return
	}

	consumer := events.NewConsumer(a.srv.LedgerService)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.gateway.Run(ctx, consumer.Handle); err != nil && !errors.Is(err, context.Canceled) {
			a.errCh <- fmt.Errorf("event gateway exited with error: %w", err)
		}
	}()
}

func (a *Application) startSweep(ctx context.Context) {
	a.sweeper.Start(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		a.sweeper.Close()
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
