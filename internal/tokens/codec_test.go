package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "odinbook",
	}
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(testConfig())
	require.NoError(t, err)
	return codec
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for _, kind := range []Kind{Access, Refresh} {
		raw, err := codec.Issue(kind, Subject{UserID: 42, Email: "ada@example.com"})
		require.NoError(t, err)

		claims, err := codec.Verify(kind, raw)
		require.NoError(t, err, kind)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "ada@example.com", claims.Email)
		assert.Equal(t, kind, claims.Kind)
		assert.NotEmpty(t, claims.ID)
	}
}

func TestVerifyRejectsOtherKind(t *testing.T) {
	codec := newTestCodec(t)

	access, err := codec.Issue(Access, Subject{UserID: 1, Email: "a@example.com"})
	require.NoError(t, err)
	refresh, err := codec.Issue(Refresh, Subject{UserID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	_, err = codec.Verify(Refresh, access)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)

	_, err = codec.Verify(Access, refresh)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := testConfig()
	ttls := map[Kind]time.Duration{Access: cfg.AccessTTL, Refresh: cfg.RefreshTTL}

	for kind, ttl := range ttls {
		t.Run(string(kind), func(t *testing.T) {
			codec := newTestCodec(t)
			codec.now = func() time.Time { return time.Now().Add(-ttl - time.Minute) }

			raw, err := codec.Issue(kind, Subject{UserID: 7, Email: "x@example.com"})
			require.NoError(t, err)

			_, err = codec.Verify(kind, raw)
			assert.ErrorIs(t, err, ErrInvalidOrExpired)
		})
	}
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	codec := newTestCodec(t)

	raw, err := codec.Issue(Access, Subject{UserID: 7, Email: "x@example.com"})
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	other := testConfig()
	other.AccessSecret = "someone-elses-secret"
	foreignCodec, err := NewCodec(other)
	require.NoError(t, err)
	foreign, err := foreignCodec.Issue(Access, Subject{UserID: 7, Email: "x@example.com"})
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 7, Kind: Access})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"tampered": tampered,
		"foreign":  foreign,
		"none":     none,
		"garbage":  "not-a-token",
		"empty":    "",
	} {
		_, err := codec.Verify(Access, token)
		assert.ErrorIs(t, err, ErrInvalidOrExpired, name)
	}
}

func TestAccessSecretCannotForgeRefresh(t *testing.T) {
	codec := newTestCodec(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 9,
		Kind:   Refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "odinbook",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := forged.SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = codec.Verify(Refresh, raw)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestNewCodecValidation(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	_, err := NewCodec(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.AccessSecret = ""
	_, err = NewCodec(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.AccessTTL = 0
	_, err = NewCodec(cfg)
	assert.Error(t, err)
}

func TestTTL(t *testing.T) {
	codec := newTestCodec(t)
	assert.Equal(t, 15*time.Minute, codec.TTL(Access))
	assert.Equal(t, 7*24*time.Hour, codec.TTL(Refresh))
}
