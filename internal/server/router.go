package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/staff-attendance/api/swagger"
	"github.com/noah-isme/staff-attendance/internal/handler"
	"github.com/noah-isme/staff-attendance/internal/middleware"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/service"
	"github.com/noah-isme/staff-attendance/pkg/config"
	"github.com/noah-isme/staff-attendance/pkg/logger"
	corsmiddleware "github.com/noah-isme/staff-attendance/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/staff-attendance/pkg/middleware/requestid"
)

// Dependencies are the constructed services the router exposes.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *service.MetricsService
	Auth       *service.AuthService
	Staff      *service.StaffService
	Attendance *service.AttendanceService
	Checks     map[string]handler.Pinger
}

// NewRouter assembles the gin engine with middleware and every route.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics, "/health", "/ready", "/metrics"))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(deps.Metrics, deps.Checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(deps.Auth)
	staffHandler := handler.NewStaffHandler(deps.Staff)
	attendanceHandler := handler.NewAttendanceHandler(deps.Attendance)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Auth))
	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/staff", staffHandler.List)
	secured.GET("/attendance", attendanceHandler.List)
	secured.GET("/attendance/summary", attendanceHandler.Summary)
	secured.GET("/attendance/export", attendanceHandler.Export)
	secured.PUT("/attendance",
		middleware.RequireRoles(models.EditorRoles...),
		middleware.Audit(log, "attendance.submit"),
		attendanceHandler.Update)
	secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Summary)

	return r
}
