package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost/odinbook")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ENV", "development")
}

func TestLoadDefaults(t *testing.T) {
	baseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTTL)
	assert.True(t, cfg.FollowAutoAccept)
	assert.Equal(t, BlobBackendGridFS, cfg.BlobBackend)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, http.SameSiteLaxMode, cfg.SameSite())
}

func TestLoadOverrides(t *testing.T) {
	baseEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("FOLLOW_AUTO_ACCEPT", "false")
	t.Setenv("COOKIE_SAME_SITE", "Strict")
	t.Setenv("CLIENT_ORIGIN", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
	assert.False(t, cfg.FollowAutoAccept)
	assert.Equal(t, http.SameSiteStrictMode, cfg.SameSite())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSConfig().AllowOrigins)
}

func TestSecureCookies(t *testing.T) {
	tests := []struct {
		env, sameSite string
		want          bool
	}{
		{"development", "lax", false},
		{"development", "strict", false},
		{"development", "none", true},
		{"production", "lax", true},
		{"production", "none", true},
	}
	for _, tt := range tests {
		cfg := &Config{Env: tt.env, CookieSameSite: tt.sameSite}
		assert.Equal(t, tt.want, cfg.SecureCookies(), "%s/%s", tt.env, tt.sameSite)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"bad ttl":       {"JWT_REFRESH_TTL", "forever"},
		"bad bool":      {"FOLLOW_AUTO_ACCEPT", "maybe"},
		"bad same site": {"COOKIE_SAME_SITE", "sometimes"},
		"bad backend":   {"BLOB_BACKEND", "s3"},
		"equal secrets": {"JWT_REFRESH_SECRET", devAccessSecret},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			baseEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsDevSecretsInProduction(t *testing.T) {
	baseEnv(t)
	t.Setenv("ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_ACCESS_SECRET", "a-real-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "a-real-refresh-secret")
	t.Setenv("FEED_CURSOR_SECRET", "a-real-cursor-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
