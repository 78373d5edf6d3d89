package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"user-portal/pkg/common/config"
	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/repository/dao"
	"user-portal/pkg/core/user/validator"
)

type fakeHashes struct {
	hashes map[int64]string
	err    error
}

func (f *fakeHashes) GetUserHash(_ context.Context, id int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	h, ok := f.hashes[id]
	if !ok {
		return "", dao.ErrCredentialNotFound
	}
	return h, nil
}

func newHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newService(t *testing.T, store HashStore) *Service {
	t.Helper()
	v, err := validator.New(config.Default().Validation)
	require.NoError(t, err)
	s, err := NewService(config.Default().Session, v, store)
	require.NoError(t, err)
	return s
}

func TestNewService_RejectsNonHMAC(t *testing.T) {
	cfg := config.Default().Session
	cfg.SigningMethod = "RS256"

	_, err := NewService(cfg, nil, &fakeHashes{})
	assert.Error(t, err)

	cfg.SigningMethod = "none"
	_, err = NewService(cfg, nil, &fakeHashes{})
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	hash := newHash(t, "Secret123")
	store := &fakeHashes{hashes: map[int64]string{42: hash}}
	s := newService(t, store)

	token, err := s.Issue(42, hash)
	require.NoError(t, err)

	res, err := s.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, res.Logged)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, int64(42), res.UserID)
	assert.Nil(t, res.Err)
}

func TestValidate_ClaimCarriesUserID(t *testing.T) {
	hash := newHash(t, "Secret123")
	s := newService(t, &fakeHashes{hashes: map[int64]string{7: hash}})

	token, err := s.Issue(7, hash)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims[validator.UserIDClaim])
	assert.Contains(t, claims, "iat")
	assert.NotContains(t, claims, "exp")
}

func TestValidate_PasswordChangeInvalidatesToken(t *testing.T) {
	oldHash := newHash(t, "Secret123")
	store := &fakeHashes{hashes: map[int64]string{42: oldHash}}
	s := newService(t, store)

	token, err := s.Issue(42, oldHash)
	require.NoError(t, err)

	store.hashes[42] = newHash(t, "Another456")

	res, err := s.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, res.Logged)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.ErrorIs(t, res.Err, errs.ErrTokenSignature)
}

func TestValidate_Rejections(t *testing.T) {
	hash := newHash(t, "Secret123")
	s := newService(t, &fakeHashes{hashes: map[int64]string{42: hash}})

	orphan, err := s.Issue(99, hash)
	require.NoError(t, err)

	noClaim, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).
		SignedString([]byte(hash))
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		validator.UserIDClaim: 42,
		"exp":                 time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(hash))
	require.NoError(t, err)

	tests := []struct {
		name   string
		raw    any
		status int
		want   *errs.Error
	}{
		{"non-string token", 12345, http.StatusBadRequest, errs.ErrTokenType},
		{"garbage token", "not-a-token", http.StatusBadRequest, errs.ErrTokenFormat},
		{"missing user claim", noClaim, http.StatusBadRequest, errs.ErrTokenFormat},
		{"no credential record", orphan, http.StatusNotFound, errs.ErrTokenData},
		{"expired token", expired, http.StatusInternalServerError, errs.ErrVerifyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Validate(context.Background(), tt.raw)
			require.NoError(t, err)
			assert.False(t, res.Logged)
			assert.Equal(t, tt.status, res.Status)
			assert.ErrorIs(t, res.Err, tt.want)
		})
	}
}

func TestValidate_RejectsOtherAlgorithm(t *testing.T) {
	hash := newHash(t, "Secret123")
	s := newService(t, &fakeHashes{hashes: map[int64]string{42: hash}})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{validator.UserIDClaim: 42}).
		SignedString([]byte(hash))
	require.NoError(t, err)

	res, err := s.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, res.Logged)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestValidate_StoreFailure(t *testing.T) {
	hash := newHash(t, "Secret123")
	s := newService(t, &fakeHashes{hashes: map[int64]string{42: hash}})
	token, err := s.Issue(42, hash)
	require.NoError(t, err)

	broken := newService(t, &fakeHashes{err: errors.New("connection refused")})
	_, err = broken.Validate(context.Background(), token)
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeLookupFailed, oopsErr.Code())
}
