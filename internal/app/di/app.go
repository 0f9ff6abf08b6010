package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"gym_backend/internal/app/router"
	authadapters "gym_backend/internal/feature/auth/adapters"
	authhandler "gym_backend/internal/feature/auth/transport/handler"
	"gym_backend/internal/feature/auth/usecase"
	pagehandler "gym_backend/internal/feature/portal/transport/handler"
	"gym_backend/internal/feature/portal/transport/web"
	"gym_backend/internal/platform/config"
	"gym_backend/internal/platform/db"
	"gym_backend/internal/platform/http/handler"
	jwtmw "gym_backend/internal/platform/jwt"
	platformredis "gym_backend/internal/platform/redis"
	"gym_backend/internal/shared/ratelimiter"
)

// App holds the wired application and the resources it must release.
type App struct {
	Router  *gin.Engine
	Auth    *usecase.AuthUsecase
	Limiter *ratelimiter.RateLimiter

	db  *gorm.DB
	rdb *redis.Client
}

// Build opens the configured backing services and wires every component.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{}

	if cfg.Store.Driver != config.DriverMemory {
		gdb, err := db.Open(cfg.Store.Driver, cfg.DB, authadapters.Models()...)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		app.db = gdb
	}

	if cfg.Redis.Enabled {
		rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable, running without cache", "error", err)
		} else {
			app.rdb = rdb
		}
	}

	ns := RedisNamespace(app.db)
	if app.rdb != nil && ns != "" {
		slog.Info("in-memory user store; Redis keys scoped to this process", "namespace", ns)
	}
	users := NewUserRepository(app.db, app.rdb, cfg.Redis.CacheTTL, ns)
	sessions := NewSessionRepository(app.rdb, app.db, ns)
	gen := jwtmw.NewGenerator(cfg.JWT.Secret)

	app.Auth = usecase.NewAuthUsecase(users, sessions, gen, usecase.Options{
		MinPasswordLength:  cfg.Auth.MinPasswordLength,
		BcryptCost:         cfg.Auth.BcryptCost,
		SessionTTL:         cfg.JWT.Expiration,
		MaxSessionsPerUser: cfg.Auth.MaxSessionsPerUser,
	})

	tmpl, err := web.Templates()
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	app.Limiter = ratelimiter.NewRateLimiter(cfg.Auth.LoginAttempts, cfg.Auth.LoginWindow)
	app.Router = router.NewRouter(router.Deps{
		Auth:        authhandler.NewAuthHandler(app.Auth),
		Pages:       pagehandler.NewPageHandler(app.Auth, cfg.HTTP.CookieSecure),
		Health:      handler.NewHealth(HealthChecks(app.db, app.rdb), 0),
		Tokens:      gen,
		Sessions:    app.Auth,
		Limiter:     app.Limiter,
		Templates:   tmpl,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Logger:      log,
	})

	return app, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
