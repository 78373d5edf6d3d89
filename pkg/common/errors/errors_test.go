package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	custom := ErrUsernameTooShort.WithMessage("need at least %d characters", 3)

	assert.True(t, errors.Is(custom, ErrUsernameTooLong), "same code, different message")
	assert.False(t, errors.Is(custom, ErrUsernameFormat))
	assert.Equal(t, "need at least 3 characters", custom.Message)
	assert.Equal(t, http.StatusBadRequest, custom.Status)
}

func TestAsAndResolve(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrUserNotFound)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "USER_NOT_FOUND", got.Code)
	assert.Same(t, ErrUserNotFound, Resolve(wrapped))

	_, ok = As(errors.New("boom"))
	assert.False(t, ok)
	assert.Same(t, ErrInternal, Resolve(errors.New("boom")))
}

func TestBody(t *testing.T) {
	body := ErrMissingSession.Body()
	assert.Equal(t, map[string]interface{}{"error": ErrMissingSession}, body)
	assert.Equal(t, "MISSING_SESSION (401): User's session is unavailable", ErrMissingSession.Error())
}

func TestHertzWrappers(t *testing.T) {
	pub := Public(ErrSameEmail)
	assert.True(t, pub.IsType(hzte.ErrorTypePublic))
	assert.Equal(t, "SAME_USER_EMAIL", pub.Meta)

	raw := errors.New("connection reset")
	priv := Private(raw, "PUT /api/users/email")
	assert.True(t, priv.IsType(hzte.ErrorTypePrivate))
	assert.Same(t, raw, priv.Err)
}
