package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"gym_backend/internal/platform/http/handler"
)

// HealthChecks returns one check per configured backing service.
func HealthChecks(db *gorm.DB, rdb *redis.Client) map[string]handler.Check {
	checks := map[string]handler.Check{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}
