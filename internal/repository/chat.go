package repository

import (
	"context"
	"errors"

	"messenger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	CreateWithMembers(ctx context.Context, chat *models.Chat, participants []string, opening *models.Message) error
	GetChat(ctx context.Context, id uint) (*models.Chat, error)
	IsMember(ctx context.Context, chatID uint, login string) (bool, error)
	AddMember(ctx context.Context, chatID uint, login string) error
	RemoveMember(ctx context.Context, chatID uint, login string) error
	DeleteCascade(ctx context.Context, chatID uint) error
	ListForMember(ctx context.Context, login string) ([]*models.Chat, error)
	ListOwnedBy(ctx context.Context, login string) ([]*models.Chat, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// CreateWithMembers inserts the chat, the initiator's membership, one
// membership per participant and the optional opening message in a single
// transaction. Nothing is persisted if any step fails.
func (r *chatRepository) CreateWithMembers(ctx context.Context, chat *models.Chat, participants []string, opening *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}

		members := make([]models.ChatMembership, 0, len(participants)+1)
		members = append(members, models.ChatMembership{ChatID: chat.ID, MemberLogin: chat.Initiator})
		for _, login := range participants {
			members = append(members, models.ChatMembership{ChatID: chat.ID, MemberLogin: login})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error; err != nil {
			return err
		}
		chat.Members = members

		if opening != nil {
			opening.ChatID = chat.ID
			if err := tx.Create(opening).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *chatRepository) GetChat(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC, member_login ASC")
		}).
		First(&chat, id).Error
	if err != nil {
		return nil, translate(err, "Chat", id)
	}
	return &chat, nil
}

func (r *chatRepository) IsMember(ctx context.Context, chatID uint, login string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatMembership{}).
		Where("chat_id = ? AND member_login = ?", chatID, login).
		Count(&count).Error
	if err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

func (r *chatRepository) AddMember(ctx context.Context, chatID uint, login string) error {
	member := models.ChatMembership{ChatID: chatID, MemberLogin: login}
	// Re-adding an existing member is a no-op.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *chatRepository) RemoveMember(ctx context.Context, chatID uint, login string) error {
	res := r.db.WithContext(ctx).
		Where("chat_id = ? AND member_login = ?", chatID, login).
		Delete(&models.ChatMembership{})
	if res.Error != nil {
		return models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Member", login)
	}
	return nil
}

// DeleteCascade removes a chat together with its memberships and messages.
func (r *chatRepository) DeleteCascade(ctx context.Context, chatID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", chatID).Delete(&models.ChatMembership{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Chat{}, chatID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Chat", chatID)
	}
	if err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *chatRepository) ListForMember(ctx context.Context, login string) ([]*models.Chat, error) {
	var chats []*models.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_memberships cm ON cm.chat_id = chats.id").
		Where("cm.member_login = ?", login).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC, member_login ASC")
		}).
		Order("chats.id ASC").
		Find(&chats).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return chats, nil
}

func (r *chatRepository) ListOwnedBy(ctx context.Context, login string) ([]*models.Chat, error) {
	var chats []*models.Chat
	err := r.db.WithContext(ctx).
		Where("initiator = ?", login).
		Order("id ASC").
		Find(&chats).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return chats, nil
}
