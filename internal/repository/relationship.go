package repository

import (
	"context"
	"iter"

	"messenger/internal/models"

	"gorm.io/gorm"
)

// RelationshipRepository defines persistence operations for contact and block lists.
type RelationshipRepository interface {
	GetList(ctx context.Context, listID uint) (*models.RelationshipList, error)
	AddMember(ctx context.Context, listID uint, login string) error
	RemoveMember(ctx context.Context, listID uint, login string) error
	CountMembers(ctx context.Context, listID uint) (int64, error)
	MemberLogins(ctx context.Context, listID uint) ([]string, error)
	ListMembers(ctx context.Context, listID uint) iter.Seq2[models.ListMember, error]
}

type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository returns a new RelationshipRepository implementation.
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) GetList(ctx context.Context, listID uint) (*models.RelationshipList, error) {
	var list models.RelationshipList
	if err := r.db.WithContext(ctx).First(&list, listID).Error; err != nil {
		return nil, translate(err, "List", listID)
	}
	return &list, nil
}

func (r *relationshipRepository) AddMember(ctx context.Context, listID uint, login string) error {
	edge := &models.RelationshipMembership{ListID: listID, MemberLogin: login}
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(login + " is already on this list")
		}
		return models.NewStoreError(err)
	}
	return nil
}

func (r *relationshipRepository) RemoveMember(ctx context.Context, listID uint, login string) error {
	if err := r.db.WithContext(ctx).
		Where("list_id = ? AND member_login = ?", listID, login).
		Delete(&models.RelationshipMembership{}).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *relationshipRepository) CountMembers(ctx context.Context, listID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RelationshipMembership{}).
		Where("list_id = ?", listID).
		Count(&count).Error; err != nil {
		return 0, models.NewStoreError(err)
	}
	return count, nil
}

func (r *relationshipRepository) MemberLogins(ctx context.Context, listID uint) ([]string, error) {
	var logins []string
	if err := r.db.WithContext(ctx).
		Model(&models.RelationshipMembership{}).
		Where("list_id = ?", listID).
		Pluck("member_login", &logins).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	return logins, nil
}

// ListMembers streams (login, status) rows for members that still have an
// account. The sequence holds a connection until it is drained or abandoned,
// so callers must not issue other queries while ranging over it.
func (r *relationshipRepository) ListMembers(ctx context.Context, listID uint) iter.Seq2[models.ListMember, error] {
	return func(yield func(models.ListMember, error) bool) {
		rows, err := r.db.WithContext(ctx).
			Table("relationship_memberships AS rm").
			Select("u.login, u.status").
			Joins("JOIN users u ON u.login = rm.member_login").
			Where("rm.list_id = ?", listID).
			Rows()
		if err != nil {
			yield(models.ListMember{}, models.NewStoreError(err))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var m models.ListMember
			if err := rows.Scan(&m.Login, &m.Status); err != nil {
				yield(models.ListMember{}, models.NewStoreError(err))
				return
			}
			if !yield(m, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.ListMember{}, models.NewStoreError(err))
		}
	}
}
