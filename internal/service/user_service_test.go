package service

import (
	"context"
	"strings"
	"testing"

	"messenger/internal/cache"
	"messenger/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	user, err := env.users.CreateUser(ctx, CreateUserInput{Login: " alice ", Password: "secret", Phone: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.NotEqual(t, "secret", user.Password)

	t.Run("fresh user owns two empty lists", func(t *testing.T) {
		var lists []models.RelationshipList
		require.NoError(t, env.db.Where("id IN ?", []uint{user.ContactListID, user.BlockListID}).Find(&lists).Error)
		require.Len(t, lists, 2)
		kinds := []models.ListKind{lists[0].Kind, lists[1].Kind}
		assert.ElementsMatch(t, []models.ListKind{models.ListKindContact, models.ListKindBlock}, kinds)

		for _, kind := range []models.ListKind{models.ListKindContact, models.ListKindBlock} {
			members, err := env.relationships.CollectMembers(ctx, kind, "alice")
			require.NoError(t, err)
			assert.Empty(t, members)
		}
	})

	t.Run("duplicate login", func(t *testing.T) {
		_, err := env.users.CreateUser(ctx, CreateUserInput{Login: "alice", Password: "other"})
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("invalid input", func(t *testing.T) {
		cases := []CreateUserInput{
			{Login: "", Password: "pw"},
			{Login: "bob", Password: ""},
			{Login: strings.Repeat("b", 51), Password: "pw"},
			{Login: "bob", Password: strings.Repeat("p", 73)},
			{Login: "bob smith", Password: "pw"},
			{Login: "bob", Password: "pw", Phone: strings.Repeat("1", 17)},
		}
		for _, in := range cases {
			_, err := env.users.CreateUser(ctx, in)
			assert.True(t, models.IsCode(err, models.CodeValidation), "input %+v", in)
		}
	})
}

func TestUserService_LogIn(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.signUp(t, "alice")

	user, err := env.users.LogIn(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)

	_, err = env.users.LogIn(ctx, "alice", "wrong")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = env.users.LogIn(ctx, "nobody", "pw")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserService_Status(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	env := newTestEnv(t, rdb)
	ctx := context.Background()
	env.signUp(t, "alice")

	status, err := env.users.GetStatus(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, status)
	assert.True(t, mr.Exists(cache.UserKey("alice")))

	_, err = env.users.UpdateStatus(ctx, "alice", strings.Repeat("s", models.MaxStatusLen+1))
	assert.True(t, models.IsCode(err, models.CodeValidation))

	updated, err := env.users.UpdateStatus(ctx, "alice", "out to lunch")
	require.NoError(t, err)
	assert.Equal(t, "out to lunch", updated)
	assert.False(t, mr.Exists(cache.UserKey("alice")))

	status, err = env.users.GetStatus(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "out to lunch", status)

	_, err = env.users.UpdateStatus(ctx, "nobody", "hi")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserService_DeleteUserLeavesReferences(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.signUp(t, "alice", "bob")
	require.NoError(t, env.relationships.AddToList(ctx, models.ListKindContact, "alice", "bob"))
	chat := env.chat(t, "bob", "alice")
	env.post(t, chat.ID, "bob", "hello")

	bob, err := env.users.GetUser(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteUser(ctx, "bob"))

	_, err = env.users.GetUser(ctx, "bob")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	// Lists, memberships, chats and messages referencing bob survive.
	var lists, edges int64
	env.db.Model(&models.RelationshipList{}).Where("id IN ?", []uint{bob.ContactListID, bob.BlockListID}).Count(&lists)
	env.db.Model(&models.RelationshipMembership{}).Where("member_login = ?", "bob").Count(&edges)
	assert.EqualValues(t, 2, lists)
	assert.EqualValues(t, 1, edges)
	assert.EqualValues(t, 1, env.countMessages(t, chat.ID))

	// Member listings only report logins that still have an account.
	members, err := env.relationships.CollectMembers(ctx, models.ListKindContact, "alice")
	require.NoError(t, err)
	assert.Empty(t, members)

	assert.True(t, models.IsCode(env.users.DeleteUser(ctx, "bob"), models.CodeNotFound))
}
