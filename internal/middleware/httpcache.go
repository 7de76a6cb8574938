package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	APICachePrefix            = "sf-api-cache:"
	cacheStateHeader          = "x-sf-cache"
	defaultHTTPCacheTTL       = 15 * time.Second
	defaultHTTPCacheMaxBody   = 1 << 20 // 1 MiB
	staleWhileRevalidateValue = 60
)

type HTTPCacheOptions struct {
	TTL                    time.Duration
	EnableCDNHeader        bool
	EnableForceCacheHeader bool
	Disable                bool
	SkipPaths              []string
	MaxBodyBytes           int
}

func (o HTTPCacheOptions) normalized() HTTPCacheOptions {
	if o.TTL <= 0 {
		o.TTL = defaultHTTPCacheTTL
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultHTTPCacheMaxBody
	}
	return o
}

// cacheEntry is stored in Redis as a JSON metadata line followed by the raw
// response body.
type cacheEntry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"-"`
}

func (e cacheEntry) encode() ([]byte, error) {
	meta, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(meta)+1+len(e.Body))
	buf = append(buf, meta...)
	buf = append(buf, '\n')
	buf = append(buf, e.Body...)
	return buf, nil
}

func decodeCacheEntry(raw []byte) (cacheEntry, bool) {
	sep := bytes.IndexByte(raw, '\n')
	if sep < 0 {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw[:sep], &entry); err != nil {
		return cacheEntry{}, false
	}
	if entry.Status <= 0 {
		entry.Status = http.StatusOK
	}
	if entry.ContentType == "" {
		entry.ContentType = "application/json; charset=utf-8"
	}
	entry.Body = raw[sep+1:]
	return entry, true
}

// teeWriter duplicates the response body into a bounded buffer while
// writing it through to the client.
type teeWriter struct {
	gin.ResponseWriter
	buf      []byte
	limit    int
	overflow bool
}

func (w *teeWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *teeWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *teeWriter) capture(data []byte) {
	if w.overflow || len(data) == 0 {
		return
	}
	if len(w.buf)+len(data) > w.limit {
		w.overflow = true
		return
	}
	w.buf = append(w.buf, data...)
}

// HTTPCache caches successful unauthenticated GET responses in Redis.
// Authenticated requests pass through with private cache headers so shared
// caches never hold per-user data.
func HTTPCache(rdb *redis.Client, opts HTTPCacheOptions) gin.HandlerFunc {
	options := opts.normalized()
	return func(c *gin.Context) {
		if options.Disable || rdb == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		if shouldSkipCachePath(c.Request.URL.Path, options.SkipPaths) || hasBypassTimestamp(c) {
			c.Next()
			return
		}

		if IsAuthenticated(c) {
			c.Next()
			setPrivateCacheHeader(c.Writer, c.Writer.Status())
			return
		}

		cacheKey := APICachePrefix + c.Request.URL.RequestURI()
		if raw, err := rdb.Get(c.Request.Context(), cacheKey).Bytes(); err == nil {
			if entry, ok := decodeCacheEntry(raw); ok {
				c.Writer.Header().Set(cacheStateHeader, "hit")
				setSharedCacheHeaders(c.Writer, entry.Status, options)
				c.Data(entry.Status, entry.ContentType, entry.Body)
				c.Abort()
				return
			}
		}

		tee := &teeWriter{ResponseWriter: c.Writer, limit: options.MaxBodyBytes}
		c.Writer = tee
		c.Next()

		status := c.Writer.Status()
		if status <= 0 {
			status = http.StatusOK
		}
		if !isCacheableResponse(status, c.Writer.Header()) {
			return
		}

		c.Writer.Header().Set(cacheStateHeader, "miss")
		setSharedCacheHeaders(c.Writer, status, options)
		if tee.overflow || len(tee.buf) == 0 {
			return
		}

		entry := cacheEntry{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        tee.buf,
		}
		raw, err := entry.encode()
		if err != nil {
			return
		}
		_ = rdb.Set(c.Request.Context(), cacheKey, raw, options.TTL).Err()
	}
}

// PurgeHTTPCache deletes all cached API responses. Returns how many keys
// were removed.
func PurgeHTTPCache(ctx context.Context, rdb *redis.Client) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, APICachePrefix+"*", 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func shouldSkipCachePath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		p := strings.TrimSpace(pattern)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func hasBypassTimestamp(c *gin.Context) bool {
	query := c.Request.URL.Query()
	for _, key := range []string{"ts", "timestamp", "_t", "t"} {
		if strings.TrimSpace(query.Get(key)) != "" {
			return true
		}
	}
	return false
}

func isCacheableResponse(status int, headers http.Header) bool {
	if status != http.StatusOK {
		return false
	}
	cacheControl := strings.ToLower(headers.Get("Cache-Control"))
	return !strings.Contains(cacheControl, "no-cache") &&
		!strings.Contains(cacheControl, "no-store") &&
		!strings.Contains(cacheControl, "private")
}

func setPrivateCacheHeader(w gin.ResponseWriter, status int) {
	if status != http.StatusOK {
		return
	}
	value := "private, max-age=0, no-cache, no-store, must-revalidate"
	w.Header().Set("cdn-cache-control", value)
	w.Header().Set("cache-control", value)
	w.Header().Set("cloudflare-cdn-cache-control", value)
}

func setSharedCacheHeaders(w gin.ResponseWriter, status int, opts HTTPCacheOptions) {
	if status != http.StatusOK {
		return
	}
	ttl := strconv.Itoa(int(opts.TTL / time.Second))
	swr := strconv.Itoa(staleWhileRevalidateValue)

	if opts.EnableCDNHeader {
		value := "max-age=" + ttl + ", stale-while-revalidate=" + swr
		w.Header().Set("cdn-cache-control", value)
		w.Header().Set("Cloudflare-CDN-Cache-Control", value)
	}
	if w.Header().Get("cache-control") != "" {
		return
	}

	var parts []string
	if opts.EnableForceCacheHeader {
		parts = append(parts, "max-age="+ttl)
	}
	if opts.EnableCDNHeader {
		parts = append(parts, "s-maxage="+ttl+", stale-while-revalidate="+swr)
	}
	if len(parts) > 0 {
		w.Header().Set("cache-control", strings.Join(parts, ", "))
	}
}
