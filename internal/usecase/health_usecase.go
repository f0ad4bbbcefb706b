package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	pool  *pgxpool.Pool
	redis *goredis.Client
}

func NewHealthUsecase(pool *pgxpool.Pool, redis *goredis.Client) HealthUsecase {
	return &healthUsecase{pool: pool, redis: redis}
}

// Check pings the dependencies with a short deadline. A degraded Redis does
// not flip overall status because search still works without its cache.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "ok",
		"database": "ok",
		"redis":    "ok",
	}

	if u.pool != nil {
		if err := u.pool.Ping(ctx); err != nil {
			status["database"] = "down"
			status["status"] = "degraded"
		}
	}
	if u.redis != nil {
		if err := u.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
		}
	}
	return status
}
