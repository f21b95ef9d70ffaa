package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/cache"
	"github.com/jonathan/ats-simulator/internal/db"
	"github.com/jonathan/ats-simulator/internal/server"
	"github.com/jonathan/ats-simulator/internal/server/ratelimit"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the simulation API server",
		Long: `Serve POST /simulations and friends over HTTP.

PostgreSQL persistence (server.database_url), the Redis result cache
(server.redis_addr) and bearer-token auth (server.jwt_secret) are each
enabled only when configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides server.port)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	cfg := a.cfg

	tax, err := taxonomy.Load(cfg.Engine.TaxonomyPath)
	if err != nil {
		return err
	}
	engine, cleanup, err := buildEngine(ctx, cfg, tax, a.logger, nil, false)
	if err != nil {
		return err
	}
	defer cleanup()

	deps := server.Deps{
		Engine:         engine,
		CacheSalt:      cacheSalt(cfg, tax),
		Limiter:        ratelimit.NewLimiter(ratelimit.FromSettings(cfg.Server.RateLimit)),
		Logger:         a.logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	if cfg.Server.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.Server.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		deps.Store = database
		a.logger.Info("simulation storage enabled")
	}

	if cfg.Server.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.Server.RedisAddr, cfg.Server.CacheTTL)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		deps.Cache = redisCache
		a.logger.Info("result cache enabled", zap.Duration("ttl", cfg.Server.CacheTTL))
	}

	jwtConfig, err := cfg.Server.JWT()
	if err != nil {
		return fmt.Errorf("invalid JWT configuration: %w", err)
	}
	if jwtConfig != nil {
		deps.JWT = server.NewJWTService(jwtConfig)
		a.logger.Info("bearer-token auth enabled")
	}

	srv, err := server.New(deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
}
