package repository

import (
	"context"

	"messenger/internal/models"

	"gorm.io/gorm"
)

// PageQuery selects one window of a chat's messages, newest first.
type PageQuery struct {
	ChatID uint
	// ExcludeSenders drops messages from these logins.
	ExcludeSenders []string
	// OnlySender keeps only messages from this login when non-empty.
	OnlySender string
	Limit      int
	Offset     int
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetInChat(ctx context.Context, chatID, msgID uint) (*models.Message, error)
	UpdateText(ctx context.Context, chatID, msgID uint, text string) error
	Delete(ctx context.Context, chatID, msgID uint) error
	Count(ctx context.Context, chatID uint) (int64, error)
	Page(ctx context.Context, q PageQuery) ([]*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

func (r *messageRepository) GetInChat(ctx context.Context, chatID, msgID uint) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Where("id = ? AND chat_id = ?", msgID, chatID).
		First(&msg).Error
	if err != nil {
		return nil, translate(err, "Message", msgID)
	}
	return &msg, nil
}

func (r *messageRepository) UpdateText(ctx context.Context, chatID, msgID uint, text string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND chat_id = ?", msgID, chatID).
		Update("text", text)
	if res.Error != nil {
		return models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message", msgID)
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, chatID, msgID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND chat_id = ?", msgID, chatID).
		Delete(&models.Message{})
	if res.Error != nil {
		return models.NewStoreError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message", msgID)
	}
	return nil
}

func (r *messageRepository) Count(ctx context.Context, chatID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&count).Error; err != nil {
		return 0, models.NewStoreError(err)
	}
	return count, nil
}

// Page returns up to q.Limit messages ordered by send time descending. Ties
// on sent_at fall back to id so windows never overlap.
func (r *messageRepository) Page(ctx context.Context, q PageQuery) ([]*models.Message, error) {
	query := r.db.WithContext(ctx).Where("chat_id = ?", q.ChatID)
	if len(q.ExcludeSenders) > 0 {
		query = query.Where("sender_login NOT IN ?", q.ExcludeSenders)
	}
	if q.OnlySender != "" {
		query = query.Where("sender_login = ?", q.OnlySender)
	}

	var messages []*models.Message
	err := query.
		Order("sent_at DESC").
		Order("id DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return messages, nil
}
