package impl

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-portal/pkg/core/user/model"
	"user-portal/pkg/core/user/repository/dao"
)

type GormCredentialRepository struct {
	db *gorm.DB
}

func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

func (r *GormCredentialRepository) GetUserHash(ctx context.Context, id int64) (string, error) {
	var cred model.Credential
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cred).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", dao.ErrCredentialNotFound
	case err != nil:
		return "", fmt.Errorf("%w: hash lookup failed", wrapGormError(err))
	default:
		return cred.Hash, nil
	}
}

func (r *GormCredentialRepository) HasUserHash(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Credential{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check hash", wrapGormError(err))
	}
	return count > 0, nil
}

func (r *GormCredentialRepository) AddUserHash(ctx context.Context, id int64, hash string) (model.Credential, error) {
	cred := model.Credential{ID: id, Hash: hash, Version: 1}
	if err := r.db.WithContext(ctx).Create(&cred).Error; err != nil {
		if isDuplicateError(err) {
			return model.Credential{}, dao.ErrDuplicateEntry
		}
		return model.Credential{}, fmt.Errorf("%w: hash creation failed", wrapGormError(err))
	}
	return cred, nil
}

// Update hash with version control
func (r *GormCredentialRepository) ChangeUserHash(ctx context.Context, id int64, hash string) (string, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cred model.Credential
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&cred).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dao.ErrCredentialNotFound
			}
			return wrapGormError(err)
		}

		result := tx.Model(&model.Credential{}).
			Where("id = ? AND version = ?", id, cred.Version).
			Updates(map[string]interface{}{
				"hash":    hash,
				"version": cred.Version + 1,
			})

		if result.Error != nil {
			return fmt.Errorf("%w: hash update failed", wrapGormError(result.Error))
		}

		if result.RowsAffected == 0 {
			return dao.ErrCredentialNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (r *GormCredentialRepository) DeleteUserHash(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Credential{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("%w: hash deletion failed", wrapGormError(result.Error))
	}
	return result.RowsAffected > 0, nil
}
