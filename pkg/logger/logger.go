package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/staff-attendance/pkg/config"
	"github.com/noah-isme/staff-attendance/pkg/middleware/requestid"
)

// New builds the API server logger. Every line carries service and env.
func New(cfg *config.Config) (*zap.Logger, error) {
	l, err := build(cfg.Env == config.EnvProduction, cfg.Log)
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("service", "attendance-api"), zap.String("env", cfg.Env)), nil
}

// NewCLI builds the operator CLI logger. It defaults to warn level on the
// console encoder; output goes to stderr so tables stay clean on stdout.
func NewCLI(cfg *config.ClientConfig) (*zap.Logger, error) {
	logCfg := cfg.Log
	if logCfg.Level == "" {
		logCfg.Level = "warn"
	}
	if logCfg.Format == "" {
		logCfg.Format = "console"
	}
	return build(false, logCfg)
}

func build(production bool, logCfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if production {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch logCfg.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if logCfg.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(logCfg.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// GinMiddleware logs one line per request. Successful hits on quiet paths
// (health probes) are logged at debug.
func GinMiddleware(l *zap.Logger, quiet ...string) gin.HandlerFunc {
	quietPaths := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		quietPaths[p] = true
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			l.Error("http_request", fields...)
		case status >= 400:
			l.Warn("http_request", fields...)
		case quietPaths[c.Request.URL.Path]:
			l.Debug("http_request", fields...)
		default:
			l.Info("http_request", fields...)
		}
	}
}
