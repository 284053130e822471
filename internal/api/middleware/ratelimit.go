package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const MsgRateLimited = "Too many requests, please try again later"

// RateLimiter limits requests per client IP. It uses Redis when a client is
// configured and falls back to an in-process token bucket otherwise, or when
// Redis errors.
type RateLimiter struct {
	redis    *redis_rate.Limiter
	fallback *localLimiter
	limit    redis_rate.Limit
	prefix   string
	log      zerolog.Logger
}

// NewRateLimiter allows perMinute requests per minute per IP. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, prefix string, perMinute int, log zerolog.Logger) *RateLimiter {
	rl := &RateLimiter{
		fallback: newLocalLimiter(),
		limit:    redis_rate.PerMinute(perMinute),
		prefix:   prefix,
		log:      log,
	}
	if rdb != nil {
		rl.redis = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ratelimit:" + rl.prefix + ":ip:" + c.RealIP()
			allowed, retryAfter := rl.allow(c.Request().Context(), key)

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit.Rate))
			if !allowed {
				secs := int(retryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, MsgRateLimited)
			}
			return next(c)
		}
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, time.Duration) {
	if rl.redis != nil {
		res, err := rl.redis.Allow(ctx, key, rl.limit)
		if err == nil {
			return res.Allowed > 0, res.RetryAfter
		}
		rl.log.Warn().Err(err).Msg("redis rate limiter unavailable, using local limiter")
	}
	return rl.fallback.allow(key, rl.limit)
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type localLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

const entryTTL = 10 * time.Minute

func newLocalLimiter() *localLimiter {
	return &localLimiter{entries: make(map[string]*limiterEntry), now: time.Now}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > entryTTL {
		for k, e := range l.entries {
			if now.Sub(e.lastAccess) > entryTTL {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	perSec := float64(limit.Rate) / limit.Period.Seconds()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst)}
		l.entries[key] = e
	}
	e.lastAccess = now

	if e.limiter.AllowN(now, 1) {
		return true, 0
	}
	return false, time.Duration(float64(time.Second) / perSec)
}
