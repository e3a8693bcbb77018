package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("post not found")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("register: %w", Conflict("email taken"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Forbidden("Not authorized"))

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal Server Error", err.Message)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "invalid_credentials", KindInvalidCredentials.String())
	assert.Equal(t, "internal", Kind(200).String())
}
