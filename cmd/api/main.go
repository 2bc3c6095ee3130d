package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/mealmood/internal/auth"
	"github.com/geocoder89/mealmood/internal/cache"
	"github.com/geocoder89/mealmood/internal/config"
	"github.com/geocoder89/mealmood/internal/db"
	"github.com/geocoder89/mealmood/internal/generator"
	httpx "github.com/geocoder89/mealmood/internal/http"
	"github.com/geocoder89/mealmood/internal/http/handlers"
	"github.com/geocoder89/mealmood/internal/observability"
	"github.com/geocoder89/mealmood/internal/repo/memory"
	"github.com/geocoder89/mealmood/internal/repo/mongodb"
	"github.com/geocoder89/mealmood/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// stores bundles the selected backend and its teardown.
type stores struct {
	users handlers.UserStore
	plans httpx.PlanRepository
	ping  handlers.Check
	close func()
}

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	tracing := cfg.OTLPEndpoint != ""
	if tracing {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "mealmood-api",
			Env:         cfg.Env,
			Endpoint:    cfg.OTLPEndpoint,
			SampleRatio: cfg.TraceSample,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	st, err := openStores(ctx, cfg, prom)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	dashCache, closeCache := openCache(cfg)
	defer closeCache()

	gen, err := openGenerator(ctx, cfg)
	if err != nil {
		log.Error("generator init failed", "generator", cfg.Generator, "err", err)
		os.Exit(1)
	}
	if c, ok := gen.(io.Closer); ok {
		defer c.Close()
	}

	guarded := generator.WithBreaker(gen, generator.BreakerConfig{
		FailureThreshold: cfg.BreakerThreshold,
		Cooldown:         cfg.BreakerCooldown,
	})

	var draining atomic.Bool

	router := httpx.NewRouter(httpx.Deps{
		Env:            cfg.Env,
		ClientURLs:     cfg.ClientURLs,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		GenTimeout:     cfg.GenerationTimeout,
		TracingEnabled: tracing,
		Users:          st.users,
		Plans:          st.plans,
		Generator:      generator.WithMetrics(guarded, prom),
		Cache:          dashCache,
		Tokens:         auth.NewManager(cfg.JWTSecret, cfg.JWTTTL),
		Prom:           prom,
		Gatherer:       reg,
		Checks: map[string]handlers.Check{
			"store": st.ping,
			"cache": dashCache.Ping,
		},
		Draining: draining.Load,
	})

	// server set up; write timeout leaves room for one provider round-trip
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "generator", gen.Name())
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	draining.Store(true)
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom) (stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return stores{
			users: memory.NewUsersRepo(),
			plans: memory.NewPlansRepo(),
			ping:  func(context.Context) error { return nil },
			close: func() {},
		}, nil

	case config.StoreDriverMongo:
		s, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB, prom)
		if err != nil {
			return stores{}, err
		}
		return stores{
			users: s.Users(),
			plans: s.Plans(),
			ping:  s.Ping,
			close: func() { _ = s.Close(context.Background()) },
		}, nil

	default:
		if err := db.Migrate(cfg.DBURL); err != nil {
			return stores{}, fmt.Errorf("migrate: %w", err)
		}

		pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DBURL, MaxConns: cfg.DBMaxConns})
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		return stores{
			users: postgres.NewUsersRepo(pool, prom),
			plans: postgres.NewPlansRepo(pool, prom),
			ping:  pool.Ping,
			close: pool.Close,
		}, nil
	}
}

func openCache(cfg config.Config) (cache.Store, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.DashboardCacheTTL), func() {}
	}

	c := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.DashboardCacheTTL,
	})
	return c, func() { _ = c.Close() }
}

func openGenerator(ctx context.Context, cfg config.Config) (generator.Generator, error) {
	if cfg.Generator == config.GeneratorStatic {
		return generator.NewStatic(), nil
	}

	return generator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}
