package dao

import (
	"context"
	"errors"

	"user-portal/pkg/core/user/model"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrDuplicateEntry     = errors.New("duplicate user entry")
	ErrDatabaseInternal   = errors.New("database internal error")
)

// UserRepository 用户身份表 (users)
type UserRepository interface {
	// GetUser 按标识符类型对应的列查询
	GetUser(ctx context.Context, ident model.Identifier) (model.User, error)
	HasUser(ctx context.Context, ident model.Identifier) (bool, error)
	HasUsername(ctx context.Context, username string) (bool, error)
	HasEmail(ctx context.Context, email string) (bool, error)
	AddUser(ctx context.Context, username, email string) (model.User, error)
	ChangeUser(ctx context.Context, id int64, changes model.UserChanges) (model.User, error)
	DeleteUser(ctx context.Context, ident model.Identifier) (bool, error)
}

// CredentialRepository 密码哈希表 (security)
type CredentialRepository interface {
	GetUserHash(ctx context.Context, id int64) (string, error)
	HasUserHash(ctx context.Context, id int64) (bool, error)
	AddUserHash(ctx context.Context, id int64, hash string) (model.Credential, error)
	ChangeUserHash(ctx context.Context, id int64, hash string) (string, error)
	DeleteUserHash(ctx context.Context, id int64) (bool, error)
}

// Store 聚合两个仓储，Transaction 内的仓储共享同一事务
type Store interface {
	Users() UserRepository
	Credentials() CredentialRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
