// Package ratelimit provides the counter stores behind the credential endpoint limiter.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"devconnect/config"
	"devconnect/internal/errors"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

const (
	keyPrefix        = "devconnect:rl"
	redisCallTimeout = 200 * time.Millisecond
	memoryExpiresIn  = 3 * time.Minute
)

// fixedWindowScript counts hits per key; the first hit in a window sets its expiry.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisStore is a fixed-window echo RateLimiterStore shared by every instance.
type RedisStore struct {
	client redis.UniversalClient
	limit  int64
	window time.Duration
	logger *slog.Logger
}

// NewRedisStore creates a store allowing limit hits per identifier per window.
func NewRedisStore(client redis.UniversalClient, limit int, window time.Duration, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		limit:  int64(limit),
		window: window,
		logger: logger,
	}
}

// Allow implements middleware.RateLimiterStore. A Redis failure lets the request
// through so an unavailable cache never blocks sign-in.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	count, err := s.hit(ctx, identifier)
	if err != nil {
		s.logger.Warn("Rate limit store unavailable, allowing request",
			slog.String("identifier", identifier),
			slog.Any("error", err),
		)

		return true, nil
	}

	return count <= s.limit, nil
}

func (s *RedisStore) hit(ctx context.Context, identifier string) (int64, error) {
	if identifier == "" {
		identifier = "unknown"
	}
	key := keyPrefix + ":" + identifier

	count, err := fixedWindowScript.Run(ctx, s.client, []string{key}, s.window.Milliseconds()).Int64()
	if err != nil {
		return 0, errors.Wrap(err, "rate limit script")
	}

	return count, nil
}

// StoreParams holds dependencies for NewStore, injected by Fx
type StoreParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewStore returns a Redis-backed store when rateLimit.redis.addr is set and an
// in-process token bucket otherwise.
func NewStore(params StoreParams) middleware.RateLimiterStore {
	cfg := params.Config.RateLimit
	if cfg == nil {
		cfg = &config.RateLimitConfig{RequestsPerWindow: config.DefaultRateLimitRequests, Window: config.DefaultRateLimitWindow}
	}

	if cfg.Redis.Addr == "" {
		params.Logger.Info("Using in-memory rate limit store",
			slog.Int("requests", cfg.RequestsPerWindow),
			slog.Duration("window", cfg.Window),
		)

		return NewMemoryStore(cfg.RequestsPerWindow, cfg.Window)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	params.Logger.Info("Using Redis rate limit store",
		slog.String("addr", cfg.Redis.Addr),
		slog.Int("requests", cfg.RequestsPerWindow),
		slog.Duration("window", cfg.Window),
	)

	return NewRedisStore(client, cfg.RequestsPerWindow, cfg.Window, params.Logger)
}

// NewMemoryStore approximates limit hits per window with echo's token bucket store.
func NewMemoryStore(limit int, window time.Duration) middleware.RateLimiterStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: memoryExpiresIn,
	})
}
