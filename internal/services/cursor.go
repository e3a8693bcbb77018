package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/repositories"
)

const cursorSeparator = "::"

// CursorCodec turns a keyset position into an opaque, HMAC-signed token and
// back. Clients must treat cursors as opaque strings.
type CursorCodec struct {
	secret []byte
}

func NewCursorCodec(secret string) *CursorCodec {
	return &CursorCodec{secret: []byte(secret)}
}

// Encode signs "<createdAt>::<id>" and appends the signature.
func (c *CursorCodec) Encode(k repositories.Keyset) string {
	payload := k.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + strconv.FormatUint(uint64(k.ID), 10)
	token := payload + cursorSeparator + c.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token))
}

// Decode verifies and parses a cursor. Any malformed or tampered cursor is
// an InvalidInput error.
func (c *CursorCodec) Decode(raw string) (*repositories.Keyset, error) {
	invalid := apperr.InvalidInput("Invalid cursor")

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, invalid
	}

	parts := strings.Split(string(decoded), cursorSeparator)
	if len(parts) != 3 {
		return nil, invalid
	}

	payload := parts[0] + cursorSeparator + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(c.sign(payload))) {
		return nil, invalid
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, invalid
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 {
		return nil, invalid
	}

	return &repositories.Keyset{CreatedAt: createdAt.UTC(), ID: uint(id)}, nil
}

func (c *CursorCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
