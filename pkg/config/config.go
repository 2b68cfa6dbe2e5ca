package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Auth AuthConfig

	Mailer MailerConfig

	Redis RedisConfig

	Guard GuardConfig

	// AllowedOrigins is a comma-separated allowlist of origins allowed to call
	// the API from the browser. Example:
	//   https://outing.example.edu,http://localhost:5173
	AllowedOrigins []string

	// BanSweepSchedule is a cron expression for deleting expired bans.
	// Empty disables the sweeper.
	BanSweepSchedule string

	MetricsEnabled bool

	// TimeZone is the IANA zone booking dates and times are written in.
	TimeZone string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	// SessionSecret signs session JWTs (HS256).
	SessionSecret string
	SessionTTL    time.Duration

	// GoogleClientID is the expected audience of student ID tokens.
	GoogleClientID string

	// AllowedEmailDomain is the suffix every student email must carry,
	// e.g. "@srmist.edu.in".
	AllowedEmailDomain string
}

type MailerConfig struct {
	// FunctionURL is the transactional-email function endpoint. Empty disables
	// notifications (they are reported as not sent).
	FunctionURL string
	APIKey      string

	// SigningSecret, when set, signs request bodies (X-Signature, hex HMAC-SHA256).
	SigningSecret string
	Timeout       time.Duration
}

type RedisConfig struct {
	// Addr empty means the in-process action lock is used.
	Addr     string
	Password string
	DB       int
}

type GuardConfig struct {
	ConfirmWindow time.Duration
	ReleaseDelay  time.Duration
	LockTTL       time.Duration
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "outingpass"),
			User:     env("DB_USER", "outingpass"),
			Password: env("DB_PASSWORD", "outingpass"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			SessionSecret:      env("SESSION_SECRET", "dev-session-secret"),
			SessionTTL:         envDuration("SESSION_TTL", 12*time.Hour),
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			AllowedEmailDomain: env("ALLOWED_EMAIL_DOMAIN", "@srmist.edu.in"),
		},
		Mailer: MailerConfig{
			FunctionURL:   os.Getenv("MAILER_FUNCTION_URL"),
			APIKey:        os.Getenv("MAILER_API_KEY"),
			SigningSecret: os.Getenv("MAILER_SIGNING_SECRET"),
			Timeout:       envDuration("MAILER_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		Guard: GuardConfig{
			ConfirmWindow: envDuration("CONFIRM_WINDOW", 300*time.Millisecond),
			ReleaseDelay:  envDuration("ACTION_RELEASE_DELAY", 500*time.Millisecond),
			LockTTL:       envDuration("ACTION_LOCK_TTL", 30*time.Second),
		},

		AllowedOrigins:   envList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
		BanSweepSchedule: env("BAN_SWEEP_SCHEDULE", "30 3 * * *"),
		MetricsEnabled:   envBool("METRICS_ENABLED", true),
		TimeZone:         env("TIME_ZONE", "Asia/Kolkata"),
	}
}

// Location resolves TimeZone, falling back to UTC when the zone is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil || c.TimeZone == "" {
		return time.UTC
	}
	return loc
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
