package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// LoginLimiter limita intentos de login por cliente para frenar fuerza bruta.
// Con Redis usa ventana fija compartida entre instancias; sin Redis cae a
// un limiter en memoria por IP.
type LoginLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	logger *logrus.Entry

	mu       sync.Mutex
	visitors map[string]*rate.Limiter
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewLoginLimiter(rdb *redis.Client, limit int, window time.Duration, logger *logrus.Entry) *LoginLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginLimiter{
		rdb:      rdb,
		limit:    limit,
		window:   window,
		logger:   logger,
		visitors: map[string]*rate.Limiter{},
	}
}

func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(r) {
			http.Error(w, "too many login attempts, retry later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *LoginLimiter) allow(r *http.Request) bool {
	key := clientKey(r)

	if l.rdb != nil {
		count, err := l.incrRedis(r.Context(), "login_rl:"+key)
		if err == nil {
			return count <= int64(l.limit)
		}
		if l.logger != nil {
			l.logger.WithError(err).Warn("redis rate limiter unavailable, falling back to memory")
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.visitors[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)
		l.visitors[key] = lim
	}
	return lim.Allow()
}

func (l *LoginLimiter) incrRedis(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	n, ok := res.(int64)
	if !ok {
		return 0, redis.Nil
	}
	return n, nil
}

func clientKey(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		parts := strings.Split(ip, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
