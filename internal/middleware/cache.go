package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/logger"
)

// bodyRecorder tees the response to the client and keeps a copy of up to
// limit bytes.  overflow is set once the body no longer fits.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if !r.overflow {
		if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
			r.overflow = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

// cachedResponse is what gets stored for one key.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

// cacheKey hashes the parts selected by cfg.KeyStrategy under cfg.Prefix.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{c.Path()}
	case "method_route":
		parts = []string{r.Method, c.Path()}
	case "method_route_query":
		parts = []string{r.Method, c.Path(), r.URL.RawQuery}
	default: // route_query
		parts = []string{c.Path(), r.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// ResponseCache serves successful responses from a local tier backed by an
// optional shared tier (Redis, else Memcached).  Cache failures never fail
// a request.
type ResponseCache struct {
	cfg   config.CacheConfig
	tiers []responseStore // fastest first
}

// NewResponseCache builds the tiers cfg asks for.  rdb may be nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	rc := &ResponseCache{cfg: cfg}
	if !cfg.Enabled {
		return rc
	}
	if cfg.LocalMax > 0 {
		rc.tiers = append(rc.tiers, newLocalStore(cfg.LocalMax, cfg.LocalTTL))
	}
	switch {
	case rdb != nil:
		rc.tiers = append(rc.tiers, redisStore{rdb: rdb})
	case cfg.MemcachedAddr != "":
		mc := memcache.New(cfg.MemcachedAddr)
		mc.Timeout = 200 * time.Millisecond
		rc.tiers = append(rc.tiers, memcacheStore{mc: mc})
	}
	return rc
}

// Tiers reports how many cache layers are active.
func (rc *ResponseCache) Tiers() int { return len(rc.tiers) }

func (rc *ResponseCache) lookup(ctx context.Context, key string) (*cachedResponse, bool) {
	for i, t := range rc.tiers {
		raw, err := t.get(ctx, key)
		if err != nil {
			if !errors.Is(err, errMiss) {
				logger.Debug("cache read failed", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		var hit cachedResponse
		if json.Unmarshal(raw, &hit) != nil {
			continue
		}
		// warm the faster tiers
		for _, up := range rc.tiers[:i] {
			_ = up.set(ctx, key, raw, rc.cfg.TTL)
		}
		return &hit, true
	}
	return nil, false
}

func (rc *ResponseCache) store(ctx context.Context, key string, entry cachedResponse) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	for _, t := range rc.tiers {
		if err := t.set(ctx, key, payload, rc.cfg.TTL); err != nil {
			logger.Debug("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Middleware caches 200 responses of the configured methods for cfg.TTL and
// marks them with X-Cache: HIT or MISS.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if len(rc.tiers) == 0 {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(rc.cfg, c)
			res := c.Response()

			if hit, ok := rc.lookup(ctx, key); ok {
				for k, vals := range hit.Header {
					if strings.EqualFold(k, echo.HeaderContentLength) {
						continue
					}
					for _, v := range vals {
						res.Header().Add(k, v)
					}
				}
				res.Header().Set("X-Cache", "HIT")
				res.WriteHeader(hit.Status)
				_, err := res.Write(hit.Body)
				return err
			}

			rec := &bodyRecorder{ResponseWriter: res.Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
			res.Writer = rec
			res.Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}

			entry := cachedResponse{Status: rec.status, Header: res.Header().Clone(), Body: rec.buf.Bytes()}
			entry.Header.Del("X-Cache")
			entry.Header.Del(echo.HeaderXRequestID)
			// the request context may already be cancelled once the client has its answer
			wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			rc.store(wctx, key, entry)
			return nil
		}
	}
}

// Purge drops every cached response in every tier.
func (rc *ResponseCache) Purge(ctx context.Context) (int, error) {
	var (
		total int
		errs  []error
	)
	for _, t := range rc.tiers {
		n, err := t.purge(ctx, rc.cfg.Prefix)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// PurgeOnWrite clears the cache after any successful non-GET request so
// catalog edits are visible immediately.
func (rc *ResponseCache) PurgeOnWrite() echo.MiddlewareFunc {
	if len(rc.tiers) == 0 {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil || c.Request().Method == http.MethodGet || c.Response().Status >= 300 {
				return err
			}
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
			defer cancel()
			if n, perr := rc.Purge(ctx); perr != nil {
				logger.Warn("cache purge failed", zap.Error(perr))
			} else if n > 0 {
				logger.Debug("cache purged", zap.Int("keys", n), zap.String("route", c.Path()))
			}
			return nil
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
