package credential

import (
	"context"
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"user-portal/pkg/common/config"
	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/core/user/validator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newManager(t *testing.T, slots int) *Manager {
	t.Helper()
	v, err := validator.New(config.Default().Validation)
	require.NoError(t, err)
	return NewManager(config.PasswordConfig{Cost: bcrypt.MinCost, HashConcurrency: slots}, v)
}

func requireOopsCode(t *testing.T, err error, code string) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %v", err)
	assert.Equal(t, code, oopsErr.Code())
}

func TestGenerate_ProducesValidSaltedHash(t *testing.T) {
	m := newManager(t, 2)
	ctx := context.Background()

	h1, err := m.Generate(ctx, "Secret123")
	require.NoError(t, err)
	h2, err := m.Generate(ctx, "Secret123")
	require.NoError(t, err)

	assert.Len(t, h1, 60)
	assert.NotEqual(t, h1, h2, "hashes must be salted")

	_, err = m.format.Hash(h1)
	require.NoError(t, err)
}

func TestCheck(t *testing.T) {
	m := newManager(t, 2)
	ctx := context.Background()

	hash, err := m.Generate(ctx, "Secret123")
	require.NoError(t, err)

	ok, err := m.Check(ctx, "Secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, wrong := range []string{"secret123", "Secret1234", "", "Secret12"} {
		ok, err := m.Check(ctx, wrong, hash)
		require.NoError(t, err)
		assert.False(t, ok, "password %q must not match", wrong)
	}
}

func TestCheck_LongPasswordsUseFirst72Bytes(t *testing.T) {
	m := newManager(t, 1)
	ctx := context.Background()
	long := strings.Repeat("p", 100)

	hash, err := m.Generate(ctx, long)
	require.NoError(t, err)

	ok, err := m.Check(ctx, long, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheck_CorruptHashFailsLoudly(t *testing.T) {
	m := newManager(t, 1)
	ctx := context.Background()

	for _, hash := range []string{"", "plain-text", "$2a$10$" + strings.Repeat("a", 52) + "!"} {
		ok, err := m.Check(ctx, "Secret123", hash)
		assert.False(t, ok)
		requireOopsCode(t, err, CodeCorruptHash)

		_, isAPIError := errs.As(err)
		assert.False(t, isAPIError, "corrupt hash must not surface as a client error")
	}
}

func TestGenerate_WaitsForSlotAndHonorsContext(t *testing.T) {
	m := newManager(t, 1)

	require.NoError(t, m.slots.Acquire(context.Background(), 1))
	defer m.slots.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, "Secret123")
	requireOopsCode(t, err, CodeNoHashSlot)

	hash := "$2a$04$" + strings.Repeat("a", 53)
	_, err = m.Check(ctx, "Secret123", hash)
	requireOopsCode(t, err, CodeNoHashSlot)
}
