package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/pkg/middleware/requestid"
)

// Audit writes one structured audit line per completed write, naming the
// acting user and the number of records the handler reported via
// SetMeta(c, "records", n). Rejected requests are logged at warn.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	audit := logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("action", action),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if raw, ok := c.Get(ContextUserKey); ok {
			if claims, ok := raw.(*models.JWTClaims); ok {
				fields = append(fields, zap.String("user_id", claims.UserID()), zap.String("role", string(claims.Role)))
			}
		}
		if n, ok := ensureMeta(c)["records"].(int); ok {
			fields = append(fields, zap.Int("records", n))
		}

		if c.Writer.Status() >= 400 {
			audit.Warn("write rejected", fields...)
			return
		}
		audit.Info("write applied", fields...)
	}
}
