package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/pkg/middleware/requestid"
)

const (
	responseMetaKey = "response_meta"
	metaStartKey    = "response_meta_start"
	cacheHitKey     = "cache_hit"
)

// WithResponseMeta seeds the per-request meta map returned in the response
// envelope. It must run after the request ID middleware.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Set(responseMetaKey, meta)
		c.Set(metaStartKey, time.Now())
		c.Next()
	}
}

// SetMeta stores one key in the response meta.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// SetCacheHit marks whether the payload came from the attendance cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
}

// ExtractMeta returns the meta map with processing_time_ms filled in, or nil
// when WithResponseMeta is not installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	meta, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	if start, ok := c.Get(metaStartKey); ok {
		meta["processing_time_ms"] = time.Since(start.(time.Time)).Milliseconds()
	}
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if raw, exists := c.Get(responseMetaKey); exists {
		if meta, ok := raw.(map[string]interface{}); ok {
			return meta
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
