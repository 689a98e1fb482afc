package models

import "time"

// ChatType is derived from the participant count at creation.
type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
)

// DeriveChatType returns group when more than one participant was supplied.
func DeriveChatType(participants int) ChatType {
	if participants > 1 {
		return ChatTypeGroup
	}
	return ChatTypePrivate
}

// Chat is a conversation container owned by its initiator.
type Chat struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Type      ChatType         `gorm:"type:varchar(10);not null" json:"type"`
	Initiator string           `gorm:"size:50;not null;index" json:"initiator"`
	CreatedAt time.Time        `json:"created_at"`
	Members   []ChatMembership `gorm:"foreignKey:ChatID" json:"members,omitempty"`
}

// TableName specifies the table name for GORM.
func (Chat) TableName() string {
	return "chats"
}

// IsOwnedBy reports whether login initiated the chat.
func (c *Chat) IsOwnedBy(login string) bool {
	return c != nil && c.Initiator == login
}

// ChatMembership is the edge between a chat and a participating login.
type ChatMembership struct {
	ChatID      uint      `gorm:"primaryKey;autoIncrement:false" json:"chat_id"`
	MemberLogin string    `gorm:"primaryKey;size:50;index" json:"member_login"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// TableName specifies the table name for GORM.
func (ChatMembership) TableName() string {
	return "chat_memberships"
}
