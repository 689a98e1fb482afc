package models

import (
	"fmt"
	"time"
)

// ListKind distinguishes the two relationship lists every user owns.
type ListKind string

const (
	// ListKindContact is the list used for discovery.
	ListKindContact ListKind = "contact"
	// ListKindBlock is the list whose members are hidden from the owner at read time.
	ListKindBlock ListKind = "block"
)

// ParseListKind converts user input into a ListKind.
func ParseListKind(s string) (ListKind, error) {
	switch ListKind(s) {
	case ListKindContact, ListKindBlock:
		return ListKind(s), nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown list kind %q", s))
}

// RelationshipList is a typed bag of logins. Each user owns exactly one per kind.
type RelationshipList struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      ListKind  `gorm:"type:varchar(10);not null" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (RelationshipList) TableName() string {
	return "relationship_lists"
}

// RelationshipMembership records that MemberLogin was added to a list.
type RelationshipMembership struct {
	ListID      uint      `gorm:"primaryKey;autoIncrement:false" json:"list_id"`
	MemberLogin string    `gorm:"primaryKey;size:50" json:"member_login"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (RelationshipMembership) TableName() string {
	return "relationship_memberships"
}

// ListMember is one row of a listing: a member login and its current status.
type ListMember struct {
	Login  string `json:"login"`
	Status string `json:"status"`
}
