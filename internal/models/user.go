// Package models contains data structures for the application's domain models.
package models

import "time"

// Field limits shared by validation and the schema.
const (
	MaxLoginLen    = 50
	MaxPasswordLen = 72
	MaxPhoneLen    = 16
	MaxStatusLen   = 140
)

// User is a registered account. Login is the primary identifier.
type User struct {
	Login         string    `gorm:"primaryKey;size:50" json:"login"`
	Password      string    `gorm:"not null" json:"-"`
	Phone         string    `gorm:"size:16" json:"phone"`
	Status        string    `gorm:"size:140;default:''" json:"status"`
	ContactListID uint      `gorm:"not null;uniqueIndex" json:"contact_list_id"`
	BlockListID   uint      `gorm:"not null;uniqueIndex" json:"block_list_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// ListID returns the id of the user's list of the given kind.
func (u *User) ListID(kind ListKind) uint {
	if kind == ListKindBlock {
		return u.BlockListID
	}
	return u.ContactListID
}
