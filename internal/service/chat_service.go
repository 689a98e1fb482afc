package service

import (
	"context"
	"log/slog"
	"strings"

	"messenger/internal/authz"
	"messenger/internal/models"
	"messenger/internal/observability"
	"messenger/internal/repository"
	"messenger/internal/validation"

	"github.com/samber/lo"
)

// ChatService provides the chat directory: creation, membership and deletion.
type ChatService struct {
	chats repository.ChatRepository
	users repository.UserRepository
	now   Clock
}

// CreateChatInput is the input for creating a chat.
type CreateChatInput struct {
	Initiator    string
	Participants []string
	// OpeningMessage, when non-blank, is posted by the initiator with the chat.
	OpeningMessage string
}

// NewChatService returns a new ChatService. A nil clock uses UTC wall time.
func NewChatService(chats repository.ChatRepository, users repository.UserRepository, now Clock) *ChatService {
	if now == nil {
		now = utcNow
	}
	return &ChatService{chats: chats, users: users, now: now}
}

// CreateChat creates a chat owned by the initiator. The type is group when
// more than one participant login was supplied. The chat, every membership
// and the optional opening message are written in one transaction.
func (s *ChatService) CreateChat(ctx context.Context, in CreateChatInput) (chat *models.Chat, err error) {
	ctx, finish := observability.StartOperation(ctx, "chat.create", in.Initiator)
	defer func() { finish(err) }()

	participants := lo.Map(in.Participants, func(p string, _ int) string { return strings.TrimSpace(p) })
	if len(participants) == 0 {
		return nil, models.NewValidationError("at least one participant is required")
	}
	if lo.Contains(participants, in.Initiator) {
		return nil, models.NewValidationError("the initiator is added automatically and cannot be listed as a participant")
	}
	for _, p := range participants {
		if err := validation.ValidateLogin(p); err != nil {
			return nil, err
		}
	}

	var opening *models.Message
	if strings.TrimSpace(in.OpeningMessage) != "" {
		if err := validation.ValidateMessageText(in.OpeningMessage); err != nil {
			return nil, err
		}
		opening = &models.Message{
			SenderLogin: in.Initiator,
			Text:        in.OpeningMessage,
			SentAt:      s.now(),
		}
	}

	unique := lo.Uniq(participants)
	for _, p := range unique {
		exists, err := s.users.Exists(ctx, p)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, models.NewNotFoundError("User", p)
		}
	}

	chat = &models.Chat{
		Type:      models.DeriveChatType(len(participants)),
		Initiator: in.Initiator,
	}
	if err := s.chats.CreateWithMembers(ctx, chat, unique, opening); err != nil {
		return nil, err
	}
	if opening != nil {
		observability.MessagesPosted.WithLabelValues(string(chat.Type)).Inc()
	}

	slog.InfoContext(ctx, "chat created",
		"chat_id", chat.ID,
		"type", chat.Type,
		"initiator", chat.Initiator,
		"participants", len(unique),
	)
	return chat, nil
}

// GetChat returns a chat with its members to a member or the initiator.
func (s *ChatService) GetChat(ctx context.Context, viewer string, chatID uint) (*models.Chat, error) {
	chat, member, err := chatAccess(ctx, s.chats, chatID, viewer)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(ctx, authz.Request{Action: authz.ActionReadChat, Requester: viewer, Chat: chat, IsMember: member}); err != nil {
		return nil, err
	}
	return chat, nil
}

// AddMember adds login to the chat. Only the initiator may do so; adding an
// existing member is a no-op.
func (s *ChatService) AddMember(ctx context.Context, actor string, chatID uint, login string) (err error) {
	ctx, finish := observability.StartOperation(ctx, "chat.add_member", actor)
	defer func() { finish(err) }()

	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(ctx, authz.Request{Action: authz.ActionAddMember, Requester: actor, Chat: chat}); err != nil {
		return err
	}
	if err := validation.ValidateLogin(login); err != nil {
		return err
	}
	exists, err := s.users.Exists(ctx, login)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", login)
	}
	return s.chats.AddMember(ctx, chatID, login)
}

// RemoveMember drops login from the chat. The initiator cannot be removed.
func (s *ChatService) RemoveMember(ctx context.Context, actor string, chatID uint, login string) (err error) {
	ctx, finish := observability.StartOperation(ctx, "chat.remove_member", actor)
	defer func() { finish(err) }()

	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(ctx, authz.Request{Action: authz.ActionRemoveMember, Requester: actor, Chat: chat}); err != nil {
		return err
	}
	if chat.IsOwnedBy(login) {
		return models.NewValidationError("the chat initiator cannot be removed")
	}
	return s.chats.RemoveMember(ctx, chatID, login)
}

// DeleteChat removes the chat with its memberships and messages.
func (s *ChatService) DeleteChat(ctx context.Context, actor string, chatID uint) (err error) {
	ctx, finish := observability.StartOperation(ctx, "chat.delete", actor)
	defer func() { finish(err) }()

	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(ctx, authz.Request{Action: authz.ActionDeleteChat, Requester: actor, Chat: chat}); err != nil {
		return err
	}
	if err := s.chats.DeleteCascade(ctx, chatID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "chat deleted", "chat_id", chatID, "actor", actor)
	return nil
}

// ListChatsForUser returns every chat login is a member of, with members.
func (s *ChatService) ListChatsForUser(ctx context.Context, login string) ([]*models.Chat, error) {
	return s.chats.ListForMember(ctx, login)
}

// ListOwnedChats returns every chat login initiated.
func (s *ChatService) ListOwnedChats(ctx context.Context, login string) ([]*models.Chat, error) {
	return s.chats.ListOwnedBy(ctx, login)
}
