package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/coursehub/internal/cache"
	"github.com/geocoder89/coursehub/internal/config"
	"github.com/geocoder89/coursehub/internal/db"
	httpx "github.com/geocoder89/coursehub/internal/http"
	"github.com/geocoder89/coursehub/internal/http/handlers"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/geocoder89/coursehub/internal/redisclient"
	"github.com/geocoder89/coursehub/internal/repo/memory"
	"github.com/geocoder89/coursehub/internal/repo/postgres"
	"github.com/geocoder89/coursehub/internal/security"
	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

type stores struct {
	users   httpx.UsersStore
	courses handlers.CoursesStore
	ready   map[string]handlers.Pinger
	closers []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "coursehub",
			Env:         cfg.Env,
			Endpoint:    cfg.OTLPEndpoint,
		})
		if err != nil {
			log.ErrorContext(ctx, "tracer init failed", "err", err)
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(sctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}()
	}

	prom := observability.NewProm()

	st, err := openStores(ctx, cfg, prom, log)
	if err != nil {
		return err
	}
	defer st.close()

	readCache := openCache(ctx, cfg, log, st)

	seedCtx, cancel := config.WithTimeout(ctx, 5*time.Second)
	err = db.EnsureSeedUser(seedCtx, st.users, security.NewHasher(cfg.BcryptCost), cfg)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "seed user failed", "err", err)
		return err
	}

	router := httpx.NewRouter(httpx.Deps{
		Log:     log,
		Config:  cfg,
		Users:   st.users,
		Courses: st.courses,
		Cache:   readCache,
		Metrics: prom,
		Ready:   st.ready,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("server failed", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")

		users := memory.NewUsersRepo()
		return &stores{
			users:   users,
			courses: memory.NewCoursesRepo(users),
			ready:   map[string]handlers.Pinger{},
		}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		log.ErrorContext(ctx, "db connect failed", "err", err)
		return nil, err
	}

	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.ErrorContext(ctx, "migrate failed", "err", err)
		return nil, err
	}

	return &stores{
		users:   postgres.NewUsersRepo(pool, prom),
		courses: postgres.NewCoursesRepo(pool, prom),
		ready:   map[string]handlers.Pinger{"postgres": pool.Ping},
		closers: []func(){pool.Close},
	}, nil
}

// openCache picks redis when configured. Without redis only the memory store
// gets a cache: postgres is shared between instances and a per-process cache
// would miss their writes.
func openCache(ctx context.Context, cfg config.Config, log *slog.Logger, st *stores) cache.Store {
	if cfg.RedisAddr == "" {
		if cfg.Store == config.StoreMemory {
			return cache.New(cfg.CacheTTL)
		}
		log.Info("course list cache disabled; set REDIS_ADDR to enable it")
		return nil
	}

	rc := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := rc.Ping(ctx); err != nil {
		// reads fall back to the store on cache errors
		log.WarnContext(ctx, "redis unreachable at startup", "addr", cfg.RedisAddr, "err", err)
	}

	st.ready["redis"] = rc.Ping
	st.closers = append(st.closers, func() {
		if err := rc.Close(); err != nil {
			log.Error("redis close failed", "err", err)
		}
	})

	return cache.NewRedisStore(rc.Raw(), cfg.CacheTTL)
}
