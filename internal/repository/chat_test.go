package repository

import (
	"context"
	"testing"
	"time"

	"messenger/internal/models"
	"messenger/internal/testutil"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberLogins(chat *models.Chat) []string {
	return lo.Map(chat.Members, func(m models.ChatMembership, _ int) string { return m.MemberLogin })
}

func TestChatRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewChatRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()

	t.Run("CreateWithMembers", func(t *testing.T) {
		chat := &models.Chat{Type: models.ChatTypeGroup, Initiator: "alice"}
		opening := &models.Message{SenderLogin: "alice", Text: "hi all", SentAt: time.Now().UTC()}

		require.NoError(t, repo.CreateWithMembers(ctx, chat, []string{"bob", "carol"}, opening))
		assert.NotZero(t, chat.ID)
		assert.Equal(t, chat.ID, opening.ChatID)

		fetched, err := repo.GetChat(ctx, chat.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, memberLogins(fetched))

		n, err := messages.Count(ctx, chat.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("CreateWithMembers without opening message", func(t *testing.T) {
		chat := &models.Chat{Type: models.ChatTypePrivate, Initiator: "bob"}
		require.NoError(t, repo.CreateWithMembers(ctx, chat, []string{"carol"}, nil))

		n, err := messages.Count(ctx, chat.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("GetChat not found", func(t *testing.T) {
		_, err := repo.GetChat(ctx, 9999)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("AddMember is idempotent", func(t *testing.T) {
		chat := &models.Chat{Type: models.ChatTypePrivate, Initiator: "alice"}
		require.NoError(t, repo.CreateWithMembers(ctx, chat, []string{"bob"}, nil))

		require.NoError(t, repo.AddMember(ctx, chat.ID, "dave"))
		require.NoError(t, repo.AddMember(ctx, chat.ID, "dave"))

		fetched, err := repo.GetChat(ctx, chat.ID)
		require.NoError(t, err)
		assert.Len(t, fetched.Members, 3)

		ok, err := repo.IsMember(ctx, chat.ID, "dave")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("RemoveMember", func(t *testing.T) {
		chat := &models.Chat{Type: models.ChatTypePrivate, Initiator: "alice"}
		require.NoError(t, repo.CreateWithMembers(ctx, chat, []string{"bob"}, nil))

		require.NoError(t, repo.RemoveMember(ctx, chat.ID, "bob"))
		ok, err := repo.IsMember(ctx, chat.ID, "bob")
		require.NoError(t, err)
		assert.False(t, ok)

		err = repo.RemoveMember(ctx, chat.ID, "bob")
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("DeleteCascade", func(t *testing.T) {
		chat := &models.Chat{Type: models.ChatTypePrivate, Initiator: "erin"}
		require.NoError(t, repo.CreateWithMembers(ctx, chat, []string{"frank"}, nil))
		require.NoError(t, messages.Create(ctx, &models.Message{ChatID: chat.ID, SenderLogin: "frank", Text: "yo", SentAt: time.Now().UTC()}))

		require.NoError(t, repo.DeleteCascade(ctx, chat.ID))

		_, err := repo.GetChat(ctx, chat.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))

		var edges, msgs int64
		db.Model(&models.ChatMembership{}).Where("chat_id = ?", chat.ID).Count(&edges)
		db.Model(&models.Message{}).Where("chat_id = ?", chat.ID).Count(&msgs)
		assert.Zero(t, edges)
		assert.Zero(t, msgs)

		err = repo.DeleteCascade(ctx, chat.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("ListForMember and ListOwnedBy", func(t *testing.T) {
		owned := &models.Chat{Type: models.ChatTypePrivate, Initiator: "gina"}
		require.NoError(t, repo.CreateWithMembers(ctx, owned, []string{"hank"}, nil))
		joined := &models.Chat{Type: models.ChatTypeGroup, Initiator: "hank"}
		require.NoError(t, repo.CreateWithMembers(ctx, joined, []string{"gina", "ivan"}, nil))

		chats, err := repo.ListForMember(ctx, "gina")
		require.NoError(t, err)
		require.Len(t, chats, 2)
		assert.Equal(t, owned.ID, chats[0].ID)
		assert.ElementsMatch(t, []string{"hank", "gina", "ivan"}, memberLogins(chats[1]))

		mine, err := repo.ListOwnedBy(ctx, "gina")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, owned.ID, mine[0].ID)
	})
}
