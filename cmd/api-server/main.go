package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/handler"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/repository"
	"github.com/noah-isme/staff-attendance/internal/server"
	"github.com/noah-isme/staff-attendance/internal/service"
	"github.com/noah-isme/staff-attendance/pkg/cache"
	"github.com/noah-isme/staff-attendance/pkg/config"
	"github.com/noah-isme/staff-attendance/pkg/database"
	"github.com/noah-isme/staff-attendance/pkg/logger"
)

// @title Staff Attendance API
// @version 1.0.0
// @description Daily attendance and shift scheduling for hospital staff
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Attendance.CacheTTL, logr, cfg.Attendance.CacheEnabled && cacheRepo.Enabled())

	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if cfg.Bootstrap.AdminEmail != "" {
		if _, err := authSvc.Bootstrap(ctx, service.BootstrapAccount{
			Email:    cfg.Bootstrap.AdminEmail,
			Password: cfg.Bootstrap.AdminPassword,
			FullName: cfg.Bootstrap.AdminName,
			Role:     models.RoleAdmin,
		}); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}
	staffSvc := service.NewStaffService(staffRepo, validate, metrics, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, staffRepo, cacheSvc, metrics, validate, logr, service.AttendanceConfig{
		CacheTTL:            cfg.Attendance.CacheTTL,
		MaxPageSize:         cfg.Attendance.MaxPageSize,
		ScheduleHorizonDays: cfg.Attendance.ScheduleHorizonDays,
	})

	checks := map[string]handler.Pinger{"postgres": handler.PingerFunc(db.PingContext)}
	if cacheRepo.Enabled() {
		checks["redis"] = cacheRepo
	}

	router := server.NewRouter(server.Dependencies{
		Config:     cfg,
		Logger:     logr,
		Metrics:    metrics,
		Auth:       authSvc,
		Staff:      staffSvc,
		Attendance: attendanceSvc,
		Checks:     checks,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
