package seed

import (
	"context"
	"testing"

	"messenger/internal/models"
	"messenger/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := NewSeeder(db, 42)

	res, err := s.Run(context.Background(), Options{
		Users:           4,
		Chats:           3,
		MessagesPerChat: 5,
		BlockRatio:      1,
	})
	require.NoError(t, err)
	assert.Len(t, res.Users, 4)
	assert.Len(t, res.Chats, 3)
	assert.Equal(t, 15, res.Messages)
	assert.Equal(t, 4, res.Blocks)

	var users, lists, messages int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.RelationshipList{}).Count(&lists)
	db.Model(&models.Message{}).Count(&messages)
	assert.EqualValues(t, 4, users)
	assert.EqualValues(t, 8, lists)
	assert.EqualValues(t, 15, messages)

	// Nobody lands on their own lists.
	var self int64
	db.Table("relationship_memberships AS rm").
		Joins("JOIN users u ON u.login = rm.member_login AND (u.contact_list_id = rm.list_id OR u.block_list_id = rm.list_id)").
		Count(&self)
	assert.Zero(t, self)

	for _, id := range res.Chats {
		var chat models.Chat
		require.NoError(t, db.Preload("Members").First(&chat, id).Error)
		logins := make([]string, 0, len(chat.Members))
		for _, m := range chat.Members {
			logins = append(logins, m.MemberLogin)
		}
		assert.Contains(t, logins, chat.Initiator)
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := NewSeeder(db, 7)
	_, err := s.Run(context.Background(), Options{Users: 2, Chats: 1, MessagesPerChat: 2})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll())

	for _, model := range []interface{}{&models.User{}, &models.RelationshipList{}, &models.Chat{}, &models.Message{}} {
		var n int64
		db.Model(model).Count(&n)
		assert.Zero(t, n, "%T", model)
	}
}

func TestSeeder_RequiresTwoUsers(t *testing.T) {
	s := NewSeeder(testutil.NewTestDB(t), 1)
	_, err := s.Run(context.Background(), Options{Users: 1})
	assert.Error(t, err)
}
