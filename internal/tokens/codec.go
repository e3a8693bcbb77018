// Package tokens issues and verifies the two bearer credentials used by the
// session layer: short-lived access tokens and longer-lived refresh tokens.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Kind selects which credential class a token belongs to.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

// ErrInvalidOrExpired is the only failure Verify reports. Bad signatures,
// foreign secrets, wrong kinds and expiry all map to it.
var ErrInvalidOrExpired = errors.New("token invalid or expired")

// Subject is the identity embedded in a token.
type Subject struct {
	UserID uint
	Email  string
}

// Claims are the JWT claims carried by both token kinds.
type Claims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Kind   Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Config holds per-kind secrets and lifetimes.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// Codec signs and verifies tokens. It is safe for concurrent use.
type Codec struct {
	keys   map[Kind]signingKey
	issuer string
	now    func() time.Time
}

// NewCodec validates cfg and builds a Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("tokens: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("tokens: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("tokens: token lifetimes must be positive")
	}
	return &Codec{
		keys: map[Kind]signingKey{
			Access:  {secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
			Refresh: {secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
		},
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of tokens of the given kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	return c.keys[kind].ttl
}

// Issue signs a new token of the given kind for subject.
func (c *Codec) Issue(kind Kind, subject Subject) (string, error) {
	key, ok := c.keys[kind]
	if !ok {
		return "", errors.New("tokens: unknown token kind " + string(kind))
	}

	now := c.now()
	claims := &Claims{
		UserID: subject.UserID,
		Email:  subject.Email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key.secret)
}

// Verify parses raw as a token of the given kind. Any failure yields
// ErrInvalidOrExpired.
func (c *Codec) Verify(kind Kind, raw string) (*Claims, error) {
	key, ok := c.keys[kind]
	if !ok || raw == "" {
		return nil, ErrInvalidOrExpired
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidOrExpired
		}
		return key.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidOrExpired
	}

	if claims.Kind != kind || claims.UserID == 0 || claims.ExpiresAt == nil {
		return nil, ErrInvalidOrExpired
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, ErrInvalidOrExpired
	}

	return claims, nil
}
