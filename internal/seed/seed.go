// Package seed populates the database with fake users, relationships, chats
// and messages for development and demos. Every write goes through the
// service layer so seeded data obeys the same rules as live traffic.
package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"messenger/internal/cache"
	"messenger/internal/models"
	"messenger/internal/repository"
	"messenger/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	Users           int
	Chats           int
	MessagesPerChat int
	// BlockRatio is the share of users that block one random other user.
	BlockRatio float64
}

// Result summarizes what a run created.
type Result struct {
	Users    []string
	Chats    []uint
	Messages int
	Blocks   int
}

// Seeder creates demo data through the services.
type Seeder struct {
	db            *gorm.DB
	faker         *gofakeit.Faker
	users         *service.UserService
	relationships *service.RelationshipService
	chats         *service.ChatService
	messages      *service.MessageService
	clock         time.Time
}

// NewSeeder wires a Seeder over db.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Seeder{
		db:    db,
		faker: gofakeit.New(seed),
		clock: time.Now().UTC().Add(-30 * 24 * time.Hour),
	}

	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewRelationshipRepository(db)
	chatRepo := repository.NewChatRepository(db)
	noCache := cache.New(nil)

	s.users = service.NewUserService(userRepo, noCache)
	s.relationships = service.NewRelationshipService(userRepo, listRepo, noCache)
	s.chats = service.NewChatService(chatRepo, userRepo, s.tick)
	s.messages = service.NewMessageService(
		repository.NewMessageRepository(db),
		chatRepo,
		service.NewVisibilityFilter(userRepo, listRepo, noCache),
		s.tick,
	)
	return s
}

// tick advances the synthetic clock by a few minutes per message.
func (s *Seeder) tick() time.Time {
	s.clock = s.clock.Add(time.Duration(s.faker.Number(1, 90)) * time.Minute)
	return s.clock
}

// ClearAll removes every row the application owns.
func (s *Seeder) ClearAll() error {
	session := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Message{},
		&models.ChatMembership{},
		&models.Chat{},
		&models.RelationshipMembership{},
		&models.User{},
		&models.RelationshipList{},
	} {
		if err := session.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	log.Println("🧹 Cleared existing data")
	return nil
}

// Run creates users, relationships, chats and messages according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Users < 2 {
		return nil, fmt.Errorf("at least two users are required, got %d", opts.Users)
	}
	res := &Result{}

	for i := 0; i < opts.Users; i++ {
		login := s.login(i)
		if _, err := s.users.CreateUser(ctx, service.CreateUserInput{
			Login:    login,
			Password: DefaultPassword,
			Phone:    s.faker.Phone(),
		}); err != nil {
			return nil, fmt.Errorf("create user %s: %w", login, err)
		}
		if _, err := s.users.UpdateStatus(ctx, login, truncate(s.faker.HipsterSentence(3), models.MaxStatusLen)); err != nil {
			return nil, err
		}
		res.Users = append(res.Users, login)
	}
	log.Printf("👤 Created %d users", len(res.Users))

	for _, owner := range res.Users {
		for _, contact := range s.pick(res.Users, owner, s.faker.Number(1, 3)) {
			if err := s.relationships.AddToList(ctx, models.ListKindContact, owner, contact); err != nil && !models.IsCode(err, models.CodeConflict) {
				return nil, err
			}
		}
		if s.faker.Float64Range(0, 1) < opts.BlockRatio {
			target := s.pick(res.Users, owner, 1)[0]
			if err := s.relationships.AddToList(ctx, models.ListKindBlock, owner, target); err != nil {
				return nil, err
			}
			res.Blocks++
		}
	}

	for i := 0; i < opts.Chats; i++ {
		initiator := res.Users[s.faker.Number(0, len(res.Users)-1)]
		participants := s.pick(res.Users, initiator, s.faker.Number(1, 3))
		chat, err := s.chats.CreateChat(ctx, service.CreateChatInput{
			Initiator:      initiator,
			Participants:   participants,
			OpeningMessage: s.text(),
		})
		if err != nil {
			return nil, fmt.Errorf("create chat: %w", err)
		}
		res.Chats = append(res.Chats, chat.ID)
		res.Messages++

		members := append([]string{initiator}, participants...)
		for j := 1; j < opts.MessagesPerChat; j++ {
			sender := members[s.faker.Number(0, len(members)-1)]
			if _, err := s.messages.PostMessage(ctx, chat.ID, sender, s.text()); err != nil {
				return nil, fmt.Errorf("post message: %w", err)
			}
			res.Messages++
		}
	}
	log.Printf("💬 Created %d chats with %d messages", len(res.Chats), res.Messages)

	return res, nil
}

func (s *Seeder) login(i int) string {
	base := strings.ToLower(s.faker.Username())
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' {
			return r
		}
		return -1
	}, base)
	return truncate(fmt.Sprintf("%s_%d", base, i), models.MaxLoginLen)
}

func (s *Seeder) text() string {
	return truncate(s.faker.Sentence(s.faker.Number(3, 20)), models.MaxMessageLen)
}

// pick returns up to n distinct logins other than exclude.
func (s *Seeder) pick(logins []string, exclude string, n int) []string {
	pool := lo.Without(logins, exclude)
	s.faker.ShuffleStrings(pool)
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
