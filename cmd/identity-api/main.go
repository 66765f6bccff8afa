// Command identity-api serves the identity record HTTP API.
//
// @title                       Identity API
// @version                     1.0
// @description                 Identity record service with role-based access control.
// @BasePath                    /
// @securityDefinitions.basic   BasicAuth
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api"
	"github.com/99minutos/identity-service/internal/api/middleware"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/core/service"
	"github.com/99minutos/identity-service/internal/infrastructure/db/memory"
	"github.com/99minutos/identity-service/internal/infrastructure/db/mongo"
	"github.com/99minutos/identity-service/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-service/internal/infrastructure/db/sqlite"
	"github.com/99minutos/identity-service/internal/pkg/config"
	"github.com/99minutos/identity-service/pkg/logger"
)

const serviceName = "identity-api"

// store bundles the selected account repository with its lifecycle hooks.
type store struct {
	repo  ports.AccountRepository
	ping  ports.Pinger
	close func(context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("identity-api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing account store")
		}
	}()

	readiness := map[string]ports.Pinger{cfg.StoreDriver: st.ping}

	var cache ports.ViewCache
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func(c *goredis.Client) { _ = c.Close() }(rdb)

		viewCache := redis.NewViewCache(rdb, cfg.Redis.CacheTTL)
		cache = viewCache
		readiness["redis"] = viewCache
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("view cache enabled")
	}

	accounts := service.NewAccountService(st.repo, cache, cfg.BcryptCost, log)
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, bearer tokens will be rejected")
	}

	e := api.NewRouter(api.Deps{
		Accounts:      accounts,
		Authenticator: accounts,
		JWTSecret:     cfg.JWTSecret,
		Readiness:     readiness,
		Logger:        log,
		LogBodies: middleware.BodyLogConfig{
			Requests:  cfg.Log.Requests,
			Responses: cfg.Log.Responses,
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		repo, client, err := mongo.Open(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo account store ready")
		return &store{repo: repo, ping: repo, close: client.Disconnect}, nil

	case config.DriverSQLite:
		repo, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLite.Path).Msg("sqlite account store ready")
		return &store{repo: repo, ping: repo, close: func(context.Context) error { return repo.Close() }}, nil

	case config.DriverMemory:
		repo := memory.NewAccountRepository()
		log.Warn().Msg("using in-memory account store, data is lost on restart")
		return &store{repo: repo, ping: repo, close: func(context.Context) error { return nil }}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
