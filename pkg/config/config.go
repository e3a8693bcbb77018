package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Development fallbacks. Load refuses to start production with any of them.
const (
	devAccessSecret  = "dev-access-secret-change-me"
	devRefreshSecret = "dev-refresh-secret-change-me"
	devCursorSecret  = "dev-cursor-secret-change-me"
)

const (
	BlobBackendGridFS   = "gridfs"
	BlobBackendFirebase = "firebase"
)

type Config struct {
	Port        string
	Env         string
	MetricsPort string
	LogLevel    string

	PostgresConnStr string
	MongoURI        string
	MongoDatabase   string

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	BcryptCost       int

	CookieSameSite string
	ClientOrigin   string

	FollowAutoAccept bool
	FeedCursorSecret string

	BlobBackend             string
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string
	MediaBaseURL            string

	// AuthRateLimit is the sustained requests per second allowed per client
	// IP on login and register.
	AuthRateLimit float64
	AuthRateBurst int
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the environment, after merging a .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "odinbook"),

		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", devAccessSecret),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", devRefreshSecret),

		CookieSameSite: strings.ToLower(getEnv("COOKIE_SAME_SITE", "lax")),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		FeedCursorSecret: getEnv("FEED_CURSOR_SECRET", devCursorSecret),

		BlobBackend:             strings.ToLower(getEnv("BLOB_BACKEND", BlobBackendGridFS)),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseStorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
	}
	cfg.MediaBaseURL = getEnv("MEDIA_BASE_URL", "http://localhost:"+cfg.Port+"/media")

	var err error
	if cfg.JWTAccessTTL, err = getDuration("JWT_ACCESS_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWTRefreshTTL, err = getDuration("JWT_REFRESH_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.FollowAutoAccept, err = getBool("FOLLOW_AUTO_ACCEPT", true); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimit, err = getFloat("AUTH_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.AuthRateBurst, err = getInt("AUTH_RATE_BURST", 10); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.PostgresConnStr == "" {
		return errors.New("POSTGRES_CONN_STR environment variable not set")
	}

	switch c.CookieSameSite {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("COOKIE_SAME_SITE must be lax, strict or none, got %q", c.CookieSameSite)
	}

	switch c.BlobBackend {
	case BlobBackendGridFS:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI environment variable not set")
		}
	case BlobBackendFirebase:
		if c.FirebaseCredentialsPath == "" || c.FirebaseStorageBucket == "" {
			return errors.New("FIREBASE_CREDENTIALS_PATH and FIREBASE_STORAGE_BUCKET are required for the firebase blob backend")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be %s or %s, got %q", BlobBackendGridFS, BlobBackendFirebase, c.BlobBackend)
	}

	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if c.IsProduction() {
		for name, value := range map[string]string{
			"JWT_ACCESS_SECRET":  c.JWTAccessSecret,
			"JWT_REFRESH_SECRET": c.JWTRefreshSecret,
			"FEED_CURSOR_SECRET": c.FeedCursorSecret,
		} {
			switch value {
			case devAccessSecret, devRefreshSecret, devCursorSecret:
				return fmt.Errorf("%s must be set in production", name)
			}
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, raw)
	}
	return f, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false, got %q", key, raw)
	}
	return b, nil
}
