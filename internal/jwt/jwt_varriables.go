package jwt

import (
	"time"

	"lead-intake-backend/internal/env"

	"github.com/go-redis/redis/v8"
)

var (
	OPERATOR_SECRET string
	RedisClient     *redis.Client
)

const RefreshTokenTTL = 24 * 30 * time.Hour

const (
	RoleOperator Role = iota
)

var RoleSecrets = map[Role]string{}

func init() {
	OPERATOR_SECRET = env.Get(env.OperatorSecret)
	RoleSecrets[RoleOperator] = OPERATOR_SECRET

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     env.Get(env.AuthRedisURL),
		Password: env.Get(env.AuthRedisPass),
		DB:       0,
	})
}
