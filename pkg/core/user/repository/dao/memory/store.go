// Package memory 内存存储，用于开发环境和测试
package memory

import (
	"context"
	"sync"
	"time"

	"user-portal/pkg/core/user/model"
	"user-portal/pkg/core/user/repository/dao"
)

type state struct {
	nextID      int64
	users       map[int64]model.User
	credentials map[int64]model.Credential
}

func (s *state) clone() *state {
	c := &state{
		nextID:      s.nextID,
		users:       make(map[int64]model.User, len(s.users)),
		credentials: make(map[int64]model.Credential, len(s.credentials)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.credentials {
		c.credentials[k] = v
	}
	return c
}

// Store keeps both tables in memory. Transactions run on a copy that
// replaces the live state only when fn succeeds; the live state stays
// locked for the duration.
type Store struct {
	mu   *sync.RWMutex
	data *state
	inTx bool
}

func NewStore() *Store {
	return &Store{
		mu: &sync.RWMutex{},
		data: &state{
			nextID:      1,
			users:       map[int64]model.User{},
			credentials: map[int64]model.Credential{},
		},
	}
}

func (s *Store) Users() dao.UserRepository             { return &userRepo{s} }
func (s *Store) Credentials() dao.CredentialRepository { return &credentialRepo{s} }

func (s *Store) Transaction(ctx context.Context, fn func(tx dao.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: &sync.RWMutex{}, data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// match 只比较标识符类型对应的字段
func match(u model.User, ident model.Identifier) bool {
	switch ident.Kind {
	case model.KindID:
		return u.ID == ident.ID
	case model.KindEmail:
		return u.Email == ident.Value
	default:
		return u.Username == ident.Value
	}
}

type userRepo struct{ s *Store }

func (r *userRepo) find(ident model.Identifier) (model.User, bool) {
	for _, u := range r.s.data.users {
		if match(u, ident) {
			return u, true
		}
	}
	return model.User{}, false
}

func (r *userRepo) GetUser(_ context.Context, ident model.Identifier) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.find(ident)
	if !ok {
		return model.User{}, dao.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepo) HasUser(_ context.Context, ident model.Identifier) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.find(ident)
	return ok, nil
}

func (r *userRepo) HasUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.taken(0, username, ""), nil
}

func (r *userRepo) HasEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.taken(0, "", email), nil
}

// taken reports whether a user other than skip already holds username or email.
func (r *userRepo) taken(skip int64, username, email string) bool {
	for _, u := range r.s.data.users {
		if u.ID == skip {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return true
		}
	}
	return false
}

func (r *userRepo) AddUser(_ context.Context, username, email string) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.taken(0, username, email) {
		return model.User{}, dao.ErrDuplicateEntry
	}

	now := time.Now()
	u := model.User{
		ID:        r.s.data.nextID,
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.data.nextID++
	r.s.data.users[u.ID] = u
	return u, nil
}

func (r *userRepo) ChangeUser(_ context.Context, id int64, changes model.UserChanges) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return model.User{}, dao.ErrUserNotFound
	}

	var username, email string
	if changes.Username != nil {
		username = *changes.Username
	}
	if changes.Email != nil {
		email = *changes.Email
	}
	if r.taken(id, username, email) {
		return model.User{}, dao.ErrDuplicateEntry
	}

	if changes.Username != nil {
		u.Username = username
	}
	if changes.Email != nil {
		u.Email = email
	}
	if !changes.Empty() {
		u.UpdatedAt = time.Now()
	}
	r.s.data.users[id] = u
	return u, nil
}

func (r *userRepo) DeleteUser(_ context.Context, ident model.Identifier) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.find(ident)
	if !ok {
		return false, dao.ErrUserNotFound
	}
	delete(r.s.data.users, u.ID)
	return true, nil
}

type credentialRepo struct{ s *Store }

func (r *credentialRepo) GetUserHash(_ context.Context, id int64) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.data.credentials[id]
	if !ok {
		return "", dao.ErrCredentialNotFound
	}
	return c.Hash, nil
}

func (r *credentialRepo) HasUserHash(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.data.credentials[id]
	return ok, nil
}

func (r *credentialRepo) AddUserHash(_ context.Context, id int64, hash string) (model.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.credentials[id]; ok {
		return model.Credential{}, dao.ErrDuplicateEntry
	}
	c := model.Credential{ID: id, Hash: hash, Version: 1, UpdatedAt: time.Now()}
	r.s.data.credentials[id] = c
	return c, nil
}

func (r *credentialRepo) ChangeUserHash(_ context.Context, id int64, hash string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.data.credentials[id]
	if !ok {
		return "", dao.ErrCredentialNotFound
	}
	c.Hash = hash
	c.Version++
	c.UpdatedAt = time.Now()
	r.s.data.credentials[id] = c
	return c.Hash, nil
}

func (r *credentialRepo) DeleteUserHash(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.credentials[id]; !ok {
		return false, nil
	}
	delete(r.s.data.credentials, id)
	return true, nil
}

var _ dao.Store = (*Store)(nil)
