package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-portal/pkg/common/config"
	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/model"
	"user-portal/pkg/core/user/repository/dao/memory"
	"user-portal/pkg/core/user/validator"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	v, err := validator.New(config.Default().Validation)
	require.NoError(t, err)
	return NewResolver(v)
}

func TestResolve(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		raw  any
		want model.Identifier
	}{
		{"12345", model.IDIdentifier(12345)},
		{float64(7), model.IDIdentifier(7)},
		{"alice@example.com", model.EmailIdentifier("alice@example.com")},
		{"  alice@example.com ", model.EmailIdentifier("alice@example.com")},
		{"alice_01", model.UsernameIdentifier("alice_01")},
	}

	for _, tt := range tests {
		got, err := r.Resolve(tt.raw)
		require.NoError(t, err, "%v", tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolve_Invalid(t *testing.T) {
	r := newResolver(t)

	for _, raw := range []any{nil, "", "abc", "bad name!", true} {
		_, err := r.Resolve(raw)
		assert.ErrorIs(t, err, errs.ErrUUIDFormat, "%v", raw)
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	users := memory.NewStore().Users()

	alice, err := users.AddUser(ctx, "alice", "alice@example.com")
	require.NoError(t, err)

	got, ident, err := r.Find(ctx, users, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	assert.Equal(t, model.KindEmail, ident.Kind)

	_, ident, err = r.Find(ctx, users, "bobby")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
	assert.Equal(t, model.KindUsername, ident.Kind)

	_, _, err = r.Find(ctx, users, "x")
	assert.ErrorIs(t, err, errs.ErrUUIDFormat)
}
