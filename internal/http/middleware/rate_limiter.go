package middleware

import (
	"strconv"
	"sync"

	"mediaflow/internal/access"
	apperrors "mediaflow/pkg/errors"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRetryAfter         = "Retry-After"

	keyPrefixUser  = "user:"
	keyPrefixToken = "token:"
	keyPrefixIP    = "ip:"
)

// RateLimiter implements token bucket rate limiting per identity
type RateLimiter struct {
	limiters sync.Map // key -> *rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter allows requestsPerSecond per identity with the given burst.
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// identityKey prefers the resolved actor: a session user, then a share
// token, then the client IP for anonymous requests.
func identityKey(c echo.Context) string {
	actor, ok := access.ActorFrom(c)
	if !ok {
		return keyPrefixIP + c.RealIP()
	}

	switch actor.Kind() {
	case access.KindSession:
		return keyPrefixUser + actor.ID().String()
	case access.KindToken:
		return keyPrefixToken + actor.ID().String()
	default:
		return keyPrefixIP + c.RealIP()
	}
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(identityKey(c))
			header := c.Response().Header()
			header.Set(headerRateLimitLimit, strconv.Itoa(rl.burst))

			if !limiter.Allow() {
				header.Set(headerRateLimitRemaining, "0")
				header.Set(headerRetryAfter, "1")
				return apperrors.TooManyRequests()
			}

			header.Set(headerRateLimitRemaining, strconv.Itoa(int(limiter.Tokens())))
			return next(c)
		}
	}
}

// NewStrictRateLimiter guards token-addressed endpoints against guessing.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// NewGlobalRateLimiter is the lenient default for all traffic.
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(100, 200)
}
