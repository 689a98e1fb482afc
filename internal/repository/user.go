package repository

import (
	"context"
	"errors"

	"messenger/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	CreateWithLists(ctx context.Context, user *models.User) error
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Exists(ctx context.Context, login string) (bool, error)
	UpdateStatus(ctx context.Context, login, status string) error
	Delete(ctx context.Context, login string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateWithLists provisions the user's block and contact lists and then the
// user row in one transaction, filling in the list ids on user.
func (r *userRepository) CreateWithLists(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("login = ?", user.Login).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return models.NewConflictError("login " + user.Login + " is already taken")
		}

		block := &models.RelationshipList{Kind: models.ListKindBlock}
		if err := tx.Create(block).Error; err != nil {
			return err
		}
		contact := &models.RelationshipList{Kind: models.ListKindContact}
		if err := tx.Create(contact).Error; err != nil {
			return err
		}

		user.BlockListID = block.ID
		user.ContactListID = contact.ID
		return tx.Create(user).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		if isUniqueConstraintError(err) {
			return models.NewConflictError("login " + user.Login + " is already taken")
		}
		return models.NewStoreError(err)
	}
	return nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		return nil, translate(err, "User", login)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, login string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("login = ?", login).Count(&count).Error; err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, login, status string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("login = ?", login).Update("status", status)
	if res.Error != nil {
		return models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", login)
	}
	return nil
}

// Delete removes the user row only. Lists, memberships, chats and messages
// that reference the login are left in place.
func (r *userRepository) Delete(ctx context.Context, login string) error {
	res := r.db.WithContext(ctx).Where("login = ?", login).Delete(&models.User{})
	if res.Error != nil {
		return models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", login)
	}
	return nil
}
