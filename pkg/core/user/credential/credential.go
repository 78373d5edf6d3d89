// Package credential hashes and verifies user passwords with bcrypt.
package credential

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"user-portal/pkg/common/config"
)

// Error codes attached to the oops errors returned by Manager.
const (
	CodeCorruptHash = "CORRUPT_CREDENTIAL_HASH"
	CodeHashFailed  = "HASH_FAILED"
	CodeNoHashSlot  = "HASH_SLOT_UNAVAILABLE"
)

// bcrypt only reads the first 72 bytes of a password.
const maxPasswordBytes = 72

// HashFormat validates the structure of a stored hash.
type HashFormat interface {
	Hash(raw any) (string, error)
}

// Manager generates and checks password hashes. Hashing is CPU bound, so at
// most hashConcurrency hashes run at once and waiting callers honor their
// context.
type Manager struct {
	cost   int
	format HashFormat
	slots  *semaphore.Weighted
}

func NewManager(cfg config.PasswordConfig, format HashFormat) *Manager {
	slots := cfg.HashConcurrency
	if slots < 1 {
		slots = 1
	}
	return &Manager{
		cost:   cfg.Cost,
		format: format,
		slots:  semaphore.NewWeighted(int64(slots)),
	}
}

// Generate returns a salted bcrypt hash of raw.
func (m *Manager) Generate(ctx context.Context, raw string) (string, error) {
	if err := m.acquire(ctx); err != nil {
		return "", err
	}
	defer m.slots.Release(1)

	hash, err := bcrypt.GenerateFromPassword(truncate(raw), m.cost)
	if err != nil {
		return "", oops.Code(CodeHashFailed).With("cost", m.cost).Wrap(err)
	}
	return string(hash), nil
}

// Check reports whether raw matches hash. A stored hash that fails the format
// check is corrupt data, not a wrong guess, and is returned as an error.
func (m *Manager) Check(ctx context.Context, raw, hash string) (bool, error) {
	stored, err := m.format.Hash(hash)
	if err != nil {
		// 校验错误是面向客户端的 400，不能留在错误链里
		return false, oops.Code(CodeCorruptHash).Errorf("stored credential hash is invalid: %v", err)
	}

	if err := m.acquire(ctx); err != nil {
		return false, err
	}
	defer m.slots.Release(1)

	err = bcrypt.CompareHashAndPassword([]byte(stored), truncate(raw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code(CodeCorruptHash).Wrapf(err, "failed to compare credential hash")
	}
}

func (m *Manager) acquire(ctx context.Context) error {
	if err := m.slots.Acquire(ctx, 1); err != nil {
		return oops.Code(CodeNoHashSlot).Wrap(err)
	}
	return nil
}

func truncate(raw string) []byte {
	b := []byte(raw)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
