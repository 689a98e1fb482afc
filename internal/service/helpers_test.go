package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"messenger/internal/cache"
	"messenger/internal/models"
	"messenger/internal/repository"
	"messenger/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stepClock advances one second per call so every message gets a distinct timestamp.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type testEnv struct {
	db            *gorm.DB
	users         *UserService
	relationships *RelationshipService
	chats         *ChatService
	messages      *MessageService
}

func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	c := cache.New(rdb)
	clock := newStepClock()

	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewRelationshipRepository(db)
	chatRepo := repository.NewChatRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	return &testEnv{
		db:            db,
		users:         NewUserService(userRepo, c),
		relationships: NewRelationshipService(userRepo, listRepo, c),
		chats:         NewChatService(chatRepo, userRepo, clock.Now),
		messages:      NewMessageService(msgRepo, chatRepo, NewVisibilityFilter(userRepo, listRepo, c), clock.Now),
	}
}

func (e *testEnv) signUp(t *testing.T, logins ...string) {
	t.Helper()
	for _, login := range logins {
		_, err := e.users.CreateUser(context.Background(), CreateUserInput{Login: login, Password: "pw-" + login})
		require.NoError(t, err)
	}
}

func (e *testEnv) chat(t *testing.T, initiator string, participants ...string) *models.Chat {
	t.Helper()
	chat, err := e.chats.CreateChat(context.Background(), CreateChatInput{Initiator: initiator, Participants: participants})
	require.NoError(t, err)
	return chat
}

func (e *testEnv) post(t *testing.T, chatID uint, sender, text string) *models.Message {
	t.Helper()
	msg, err := e.messages.PostMessage(context.Background(), chatID, sender, text)
	require.NoError(t, err)
	return msg
}

func (e *testEnv) countMessages(t *testing.T, chatID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&n).Error)
	return n
}
