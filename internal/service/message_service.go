package service

import (
	"context"
	"log/slog"

	"messenger/internal/authz"
	"messenger/internal/models"
	"messenger/internal/observability"
	"messenger/internal/repository"
	"messenger/internal/validation"
)

// MessageService provides the message ledger and paginated reads over it.
type MessageService struct {
	messages   repository.MessageRepository
	chats      repository.ChatRepository
	visibility *VisibilityFilter
	now        Clock
}

// PageRequest addresses one page of a chat for a viewer.
type PageRequest struct {
	ChatID uint
	Viewer string
	View   View
	Offset int
}

// NewMessageService returns a new MessageService. A nil clock uses UTC wall time.
func NewMessageService(
	messages repository.MessageRepository,
	chats repository.ChatRepository,
	visibility *VisibilityFilter,
	now Clock,
) *MessageService {
	if now == nil {
		now = utcNow
	}
	return &MessageService{
		messages:   messages,
		chats:      chats,
		visibility: visibility,
		now:        now,
	}
}

// PostMessage appends text to the chat on behalf of sender.
func (s *MessageService) PostMessage(ctx context.Context, chatID uint, sender, text string) (msg *models.Message, err error) {
	ctx, finish := observability.StartOperation(ctx, "message.post", sender)
	defer func() { finish(err) }()

	if err := validation.ValidateMessageText(text); err != nil {
		return nil, err
	}
	chat, member, err := chatAccess(ctx, s.chats, chatID, sender)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(ctx, authz.Request{Action: authz.ActionPostMessage, Requester: sender, Chat: chat, IsMember: member}); err != nil {
		return nil, err
	}

	msg = &models.Message{
		ChatID:      chatID,
		SenderLogin: sender,
		Text:        text,
		SentAt:      s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	observability.MessagesPosted.WithLabelValues(string(chat.Type)).Inc()
	return msg, nil
}

// EditMessage overwrites the text of a message. Only its sender may edit.
func (s *MessageService) EditMessage(ctx context.Context, actor string, chatID, msgID uint, text string) (msg *models.Message, err error) {
	ctx, finish := observability.StartOperation(ctx, "message.edit", actor)
	defer func() { finish(err) }()

	if err := validation.ValidateMessageText(text); err != nil {
		return nil, err
	}
	chat, member, err := chatAccess(ctx, s.chats, chatID, actor)
	if err != nil {
		return nil, err
	}
	msg, err = s.messages.GetInChat(ctx, chatID, msgID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(ctx, authz.Request{
		Action:    authz.ActionEditMessage,
		Requester: actor,
		Chat:      chat,
		IsMember:  member,
		Message:   msg,
	}); err != nil {
		return nil, err
	}

	if err := s.messages.UpdateText(ctx, chatID, msgID, text); err != nil {
		return nil, err
	}
	msg.Text = text
	observability.MessageMutations.WithLabelValues("edit").Inc()
	return msg, nil
}

// DeleteMessage removes a message. Its sender or the chat initiator may delete.
func (s *MessageService) DeleteMessage(ctx context.Context, actor string, chatID, msgID uint) (err error) {
	ctx, finish := observability.StartOperation(ctx, "message.delete", actor)
	defer func() { finish(err) }()

	chat, member, err := chatAccess(ctx, s.chats, chatID, actor)
	if err != nil {
		return err
	}
	msg, err := s.messages.GetInChat(ctx, chatID, msgID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(ctx, authz.Request{
		Action:    authz.ActionDeleteMessage,
		Requester: actor,
		Chat:      chat,
		IsMember:  member,
		Message:   msg,
	}); err != nil {
		return err
	}

	if err := s.messages.Delete(ctx, chatID, msgID); err != nil {
		return err
	}
	observability.MessageMutations.WithLabelValues("delete").Inc()
	slog.InfoContext(ctx, "message deleted", "chat_id", chatID, "message_id", msgID, "actor", actor)
	return nil
}

// FetchPage returns up to ten messages, newest first, skipping offset rows
// after the view's predicate is applied.
func (s *MessageService) FetchPage(ctx context.Context, req PageRequest) (page *models.Page, err error) {
	ctx, finish := observability.StartOperation(ctx, "message.fetch_page", req.Viewer)
	defer func() { finish(err) }()

	if req.View == "" {
		req.View = ViewChronological
	}
	if err := validation.ValidateOffset(req.Offset); err != nil {
		return nil, err
	}
	chat, member, err := chatAccess(ctx, s.chats, req.ChatID, req.Viewer)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(ctx, authz.Request{Action: authz.ActionReadChat, Requester: req.Viewer, Chat: chat, IsMember: member}); err != nil {
		return nil, err
	}

	q := repository.PageQuery{
		ChatID: req.ChatID,
		Limit:  models.PageSize,
		Offset: req.Offset,
	}
	switch req.View {
	case ViewChronological:
		q.ExcludeSenders, err = s.visibility.ExclusionSet(ctx, req.Viewer)
		if err != nil {
			return nil, err
		}
	case ViewEditable:
		q.OnlySender = req.Viewer
	case ViewDeletable:
		if !chat.IsOwnedBy(req.Viewer) {
			q.OnlySender = req.Viewer
		}
	default:
		return nil, models.NewValidationError("unknown view " + string(req.View))
	}

	msgs, err := s.messages.Page(ctx, q)
	if err != nil {
		return nil, err
	}
	observability.PagesServed.WithLabelValues(string(req.View)).Inc()
	return NewPage(req.ChatID, req.Offset, msgs), nil
}

// FetchEditablePage is FetchPage restricted to the viewer's own messages.
func (s *MessageService) FetchEditablePage(ctx context.Context, chatID uint, viewer string, offset int) (*models.Page, error) {
	return s.FetchPage(ctx, PageRequest{ChatID: chatID, Viewer: viewer, View: ViewEditable, Offset: offset})
}

// FetchDeletablePage is FetchPage restricted to messages the viewer may delete.
func (s *MessageService) FetchDeletablePage(ctx context.Context, chatID uint, viewer string, offset int) (*models.Page, error) {
	return s.FetchPage(ctx, PageRequest{ChatID: chatID, Viewer: viewer, View: ViewDeletable, Offset: offset})
}
