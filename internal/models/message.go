package models

import "time"

// MaxMessageLen caps message text, counted in characters.
const MaxMessageLen = 300

// Message is a single post inside a chat. Only Text is mutable.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      uint      `gorm:"not null;index:idx_messages_chat_sent,priority:1" json:"chat_id"`
	SenderLogin string    `gorm:"size:50;not null;index" json:"sender_login"`
	SentAt      time.Time `gorm:"not null;index:idx_messages_chat_sent,priority:2" json:"sent_at"`
	Text        string    `gorm:"size:300;not null" json:"text"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}

// PageSize is the fixed number of rows in a message page.
const PageSize = 10

// Page is one timestamp-descending window of a chat's messages.
type Page struct {
	ChatID         uint       `json:"chat_id"`
	Offset         int        `json:"offset"`
	PageNumber     int        `json:"page_number"`
	Messages       []*Message `json:"messages"`
	HasPrevious    bool       `json:"has_previous"`
	HasNext        bool       `json:"has_next"`
	PreviousOffset int        `json:"previous_offset,omitempty"`
	NextOffset     int        `json:"next_offset,omitempty"`
}
