package impl

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"user-portal/pkg/core/user/model"
	"user-portal/pkg/core/user/repository/dao"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// whereIdentity 按标识符类型只匹配对应的列
// 用户名可以是纯数字，按 id 查询时不能同时匹配 username
func whereIdentity(db *gorm.DB, ident model.Identifier) *gorm.DB {
	switch ident.Kind {
	case model.KindID:
		return db.Where("id = ?", ident.ID)
	case model.KindEmail:
		return db.Where("email = ?", ident.Value)
	default:
		return db.Where("username = ?", ident.Value)
	}
}

func (r *GormUserRepository) GetUser(ctx context.Context, ident model.Identifier) (model.User, error) {
	var user model.User
	err := whereIdentity(r.db.WithContext(ctx), ident).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.User{}, dao.ErrUserNotFound
	case err != nil:
		return model.User{}, fmt.Errorf("%w: user query failed", wrapGormError(err))
	default:
		return user, nil
	}
}

func (r *GormUserRepository) HasUser(ctx context.Context, ident model.Identifier) (bool, error) {
	var count int64
	err := whereIdentity(r.db.WithContext(ctx).Model(&model.User{}), ident).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check user", wrapGormError(err))
	}
	return count > 0, nil
}

// Check username existence
func (r *GormUserRepository) HasUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check username", wrapGormError(err))
	}
	return count > 0, nil
}

// Check email existence
func (r *GormUserRepository) HasEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check email", wrapGormError(err))
	}
	return count > 0, nil
}

// AddUser relies on the unique indexes on username and email.
func (r *GormUserRepository) AddUser(ctx context.Context, username, email string) (model.User, error) {
	user := model.User{Username: username, Email: email}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateError(err) {
			return model.User{}, dao.ErrDuplicateEntry
		}
		return model.User{}, fmt.Errorf("%w: user creation failed", wrapGormError(err))
	}
	return user, nil
}

func (r *GormUserRepository) ChangeUser(ctx context.Context, id int64, changes model.UserChanges) (model.User, error) {
	updates := map[string]interface{}{}
	if changes.Username != nil {
		updates["username"] = *changes.Username
	}
	if changes.Email != nil {
		updates["email"] = *changes.Email
	}

	if len(updates) > 0 {
		err := r.db.WithContext(ctx).Model(&model.User{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			if isDuplicateError(err) {
				return model.User{}, dao.ErrDuplicateEntry
			}
			return model.User{}, fmt.Errorf("%w: user update failed", wrapGormError(err))
		}
	}

	// MySQL 对未变化的行返回 RowsAffected=0，因此以重新查询的结果为准
	return r.GetUser(ctx, model.IDIdentifier(id))
}

// DeleteUser resolves the identifier first so that at most one row, the
// resolved user, is removed.
func (r *GormUserRepository) DeleteUser(ctx context.Context, ident model.Identifier) (bool, error) {
	user, err := r.GetUser(ctx, ident)
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Delete(&model.User{}, user.ID)
	if result.Error != nil {
		return false, fmt.Errorf("%w: user deletion failed", wrapGormError(result.Error))
	}
	return result.RowsAffected > 0, nil
}
