package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Attendance AttendanceConfig
	Bootstrap  BootstrapConfig
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxOpenConns  int
	MaxIdleConns  int
	RunMigrations bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AttendanceConfig tunes the attendance endpoints.
type AttendanceConfig struct {
	CacheEnabled        bool
	CacheTTL            time.Duration
	MaxPageSize         int
	ScheduleHorizonDays int
}

// BootstrapConfig names the admin account created on startup when missing.
// An empty email disables it.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// ClientConfig configures the operator CLI talking to the attendance API.
type ClientConfig struct {
	APIURL         string
	APIToken       string
	PageSize       int
	SearchDebounce time.Duration
	HTTPTimeout    time.Duration
	WindowDays     int
	Log            LogConfig
}

func Load() (*Config, error) {
	v, err := newViper(setDefaults)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:          v.GetString("DB_HOST"),
		Port:          v.GetInt("DB_PORT"),
		User:          v.GetString("DB_USER"),
		Password:      v.GetString("DB_PASSWORD"),
		Name:          v.GetString("DB_NAME"),
		SSLMode:       v.GetString("DB_SSL_MODE"),
		MaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxPage := v.GetInt("ATTENDANCE_MAX_PAGE_SIZE")
	if maxPage <= 0 {
		maxPage = 200
	}
	horizon := v.GetInt("ATTENDANCE_SCHEDULE_HORIZON_DAYS")
	if horizon <= 0 {
		horizon = 7
	}
	cfg.Attendance = AttendanceConfig{
		CacheEnabled:        v.GetBool("ENABLE_ATTENDANCE_CACHE"),
		CacheTTL:            parseDuration(v.GetString("ATTENDANCE_CACHE_TTL"), 2*time.Minute),
		MaxPageSize:         maxPage,
		ScheduleHorizonDays: horizon,
	}

	cfg.Bootstrap = BootstrapConfig{
		AdminEmail:    strings.TrimSpace(v.GetString("BOOTSTRAP_ADMIN_EMAIL")),
		AdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
		AdminName:     v.GetString("BOOTSTRAP_ADMIN_NAME"),
	}
	if cfg.Bootstrap.AdminEmail != "" && len(cfg.Bootstrap.AdminPassword) < 8 {
		return nil, errors.New("BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}

	return cfg, nil
}

// LoadClient reads the CLI configuration from the environment and an optional .env file.
func LoadClient() (*ClientConfig, error) {
	v, err := newViper(setClientDefaults)
	if err != nil {
		return nil, err
	}

	pageSize := v.GetInt("ATTENDANCE_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 20
	}
	window := v.GetInt("ATTENDANCE_WINDOW_DAYS")
	if window <= 0 {
		window = 30
	}

	return &ClientConfig{
		APIURL:         strings.TrimRight(v.GetString("ATTENDANCE_API_URL"), "/"),
		APIToken:       v.GetString("ATTENDANCE_API_TOKEN"),
		PageSize:       pageSize,
		SearchDebounce: parseDuration(v.GetString("ATTENDANCE_SEARCH_DEBOUNCE"), 500*time.Millisecond),
		HTTPTimeout:    parseDuration(v.GetString("ATTENDANCE_HTTP_TIMEOUT"), 10*time.Second),
		WindowDays:     window,
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}, nil
}

func newViper(defaults func(*viper.Viper)) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "staff_attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("RUN_MIGRATIONS", true)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "staff-attendance")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_ATTENDANCE_CACHE", false)
	v.SetDefault("ATTENDANCE_CACHE_TTL", "2m")
	v.SetDefault("ATTENDANCE_MAX_PAGE_SIZE", 200)
	v.SetDefault("ATTENDANCE_SCHEDULE_HORIZON_DAYS", 7)

	v.SetDefault("BOOTSTRAP_ADMIN_NAME", "Administrator")
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("ATTENDANCE_API_URL", "http://localhost:8080/api/v1")
	v.SetDefault("ATTENDANCE_API_TOKEN", "")
	v.SetDefault("ATTENDANCE_PAGE_SIZE", 20)
	v.SetDefault("ATTENDANCE_SEARCH_DEBOUNCE", "500ms")
	v.SetDefault("ATTENDANCE_HTTP_TIMEOUT", "10s")
	v.SetDefault("ATTENDANCE_WINDOW_DAYS", 30)
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")
}

// An explicit SetConfigFile surfaces a missing .env as an fs error, not ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
