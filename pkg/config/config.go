package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret      = "dev_secret"
	devDownloadSecret = "dev_achievements_secret"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Achievements  AchievementsConfig
	Dashboard     DashboardConfig
	SMTP          SMTPConfig
	Notifications NotificationsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
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
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AchievementsConfig controls PDF evidence storage and validation.
type AchievementsConfig struct {
	StorageDir       string
	PublicPrefix     string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	ReconcileGrace   time.Duration
}

// DashboardConfig governs dashboard cache tuning.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// SMTPConfig configures e-mail delivery of review notifications.
type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	From          string
	SkipTLSVerify bool
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// NotificationsConfig tunes the asynchronous delivery queue.
type NotificationsConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

var defaults = map[string]interface{}{
	"ENV":        EnvDevelopment,
	"PORT":       8080,
	"API_PREFIX": "/api/v1",

	"DB_HOST":           "localhost",
	"DB_PORT":           5432,
	"DB_USER":           "postgres",
	"DB_PASSWORD":       "postgres",
	"DB_NAME":           "faculty_achievements",
	"DB_SSL_MODE":       "disable",
	"DB_MAX_OPEN_CONNS": 10,
	"DB_MAX_IDLE_CONNS": 5,

	"ENABLE_REDIS":   false,
	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     6379,
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"JWT_SECRET":     devJWTSecret,
	"JWT_ISSUER":     "faculty-achievement-api",
	"JWT_EXPIRATION": "24h",

	"ALLOWED_ORIGINS": "",
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",

	"ACHIEVEMENTS_STORAGE_DIR":       "./uploads",
	"ACHIEVEMENTS_PUBLIC_PREFIX":     "blob://achievements/",
	"ACHIEVEMENTS_SIGNED_URL_SECRET": devDownloadSecret,
	"ACHIEVEMENTS_SIGNED_URL_TTL":    "30m",
	"ACHIEVEMENTS_MAX_FILE_SIZE":     10 * 1024 * 1024,
	"ACHIEVEMENTS_RECONCILE_GRACE":   "2m",

	"DASHBOARD_CACHE_TTL": "5m",

	"SMTP_HOST":            "",
	"SMTP_PORT":            587,
	"SMTP_USER":            "",
	"SMTP_PASS":            "",
	"SMTP_FROM":            "",
	"SMTP_SKIP_TLS_VERIFY": false,

	"NOTIFY_WORKERS":     2,
	"NOTIFY_MAX_RETRIES": 3,
	"NOTIFY_RETRY_DELAY": "5s",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with. Production refuses
// the development signing secrets.
func (c *Config) Validate() error {
	var problems []string
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d out of range", c.Port))
	}
	if c.JWT.Secret == "" {
		problems = append(problems, "JWT_SECRET is empty")
	}
	if c.Achievements.StorageDir == "" {
		problems = append(problems, "ACHIEVEMENTS_STORAGE_DIR is empty")
	}
	if c.Notifications.Workers < 1 {
		problems = append(problems, "NOTIFY_WORKERS must be at least 1")
	}
	if c.Env == EnvProduction {
		if c.JWT.Secret == devJWTSecret {
			problems = append(problems, "JWT_SECRET uses the development default")
		}
		if c.Achievements.SignedURLSecret == devDownloadSecret || c.Achievements.SignedURLSecret == "" {
			problems = append(problems, "ACHIEVEMENTS_SIGNED_URL_SECRET must be set")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Env:       strings.ToLower(v.GetString("ENV")),
		Port:      v.GetInt("PORT"),
		APIPrefix: "/" + strings.Trim(v.GetString("API_PREFIX"), "/"),

		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("ENABLE_REDIS"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Issuer:     v.GetString("JWT_ISSUER"),
			Expiration: durationOr(v, "JWT_EXPIRATION", 24*time.Hour),
		},
		CORS: CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Achievements: AchievementsConfig{
			StorageDir:       v.GetString("ACHIEVEMENTS_STORAGE_DIR"),
			PublicPrefix:     v.GetString("ACHIEVEMENTS_PUBLIC_PREFIX"),
			SignedURLSecret:  v.GetString("ACHIEVEMENTS_SIGNED_URL_SECRET"),
			SignedURLTTL:     durationOr(v, "ACHIEVEMENTS_SIGNED_URL_TTL", 30*time.Minute),
			MaxFileSizeBytes: positiveOr(v.GetInt64("ACHIEVEMENTS_MAX_FILE_SIZE"), 10*1024*1024),
			ReconcileGrace:   durationOr(v, "ACHIEVEMENTS_RECONCILE_GRACE", 2*time.Minute),
		},
		Dashboard: DashboardConfig{CacheTTL: durationOr(v, "DASHBOARD_CACHE_TTL", 5*time.Minute)},
		SMTP: SMTPConfig{
			Host:          v.GetString("SMTP_HOST"),
			Port:          v.GetInt("SMTP_PORT"),
			User:          v.GetString("SMTP_USER"),
			Password:      v.GetString("SMTP_PASS"),
			From:          v.GetString("SMTP_FROM"),
			SkipTLSVerify: v.GetBool("SMTP_SKIP_TLS_VERIFY"),
		},
		Notifications: NotificationsConfig{
			Workers:    v.GetInt("NOTIFY_WORKERS"),
			MaxRetries: v.GetInt("NOTIFY_MAX_RETRIES"),
			RetryDelay: durationOr(v, "NOTIFY_RETRY_DELAY", 5*time.Second),
		},
	}
}

// durationOr reads a Go duration string, falling back on empty or invalid input.
func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func positiveOr(value, fallback int64) int64 {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
