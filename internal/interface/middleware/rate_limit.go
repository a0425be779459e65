package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-contactbook/pkg/response"
)

// ipFromCtx prefers the RealIP value, then gin's ClientIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds the counter key for a request.
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP per route.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserIDAndPath limits an authenticated user per route. It must run
// after Auth; anonymous requests fall back to the client IP.
func KeyByUserIDAndPath() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetInt64(CtxUserIDKey)
		if uid == 0 {
			return "rl:path:" + normalizePath(c) + ":anon:ip:" + ipFromCtx(c)
		}
		return "rl:path:" + normalizePath(c) + ":user:" + strconv.FormatInt(uid, 10)
	}
}

// KeyByUserID limits an authenticated user across routes.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetInt64(CtxUserIDKey)
		if uid == 0 {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + strconv.FormatInt(uid, 10)
	}
}

// Limit is a fixed-window quota: at most Max requests per Window.
type Limit struct {
	Max    int
	Window time.Duration
}

// PerMinute is a Limit of n requests per minute.
func PerMinute(n int) Limit { return Limit{Max: n, Window: time.Minute} }

func (l Limit) enabled() bool { return l.Max > 0 && l.Window > 0 }

// fixedWindowScript increments the counter, starts the window on the first
// hit and returns {count, remaining window in ms}.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local pttl = redis.call("PTTL", KEYS[1])
return {current, pttl}
`)

// AllowFunc reports whether a request bypasses the limiter.
type AllowFunc func(*gin.Context) bool

// RateLimit enforces limit per key using a Redis fixed window. It sets
// X-RateLimit-Limit/Remaining/Reset on every counted response and
// Retry-After on 429. A nil client or disabled limit is a no-op; Redis
// errors let the request through.
func RateLimit(rdb *redis.Client, limit Limit, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || !limit.enabled() || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		count, reset, err := hitWindow(c, rdb, keyFn(c), limit.Window)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(limit.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))
		if count > limit.Max {
			c.Header("Retry-After", strconv.Itoa(max(reset, 1)))
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

// hitWindow counts one request against key and returns the running count
// and the seconds until the window resets, rounded up.
func hitWindow(c *gin.Context, rdb *redis.Client, key string, window time.Duration) (int, int, error) {
	vals, err := fixedWindowScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("rate limit script: unexpected reply %v", vals)
	}
	reset := 0
	if ms := vals[1]; ms > 0 {
		reset = int((ms + 999) / 1000)
	}
	return int(vals[0]), reset, nil
}
