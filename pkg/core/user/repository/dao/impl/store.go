package impl

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"user-portal/pkg/core/user/repository/dao"
)

// GormStore MySQL 实现
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() dao.UserRepository {
	return NewGormUserRepository(s.db)
}

func (s *GormStore) Credentials() dao.CredentialRepository {
	return NewGormCredentialRepository(s.db)
}

// Transaction 在同一事务中执行 fn，fn 返回错误时回滚
func (s *GormStore) Transaction(ctx context.Context, fn func(tx dao.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", dao.ErrDatabaseInternal, err)
	}
	return sqlDB.PingContext(ctx)
}

// Error handling utils
func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func wrapGormError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return dao.ErrDuplicateEntry
		case 1045, 1049, 1146: // 数据库连接、表不存在等错误
			return fmt.Errorf("%w: %s", dao.ErrDatabaseInternal, mysqlErr.Message)
		}
	}

	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrUnsupportedRelation) {
		return dao.ErrDatabaseInternal
	}

	return err // Return original error if no specific mapping
}

var _ dao.Store = (*GormStore)(nil)
