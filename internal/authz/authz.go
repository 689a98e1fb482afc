// Package authz decides whether a requester may act on a chat or message.
package authz

import (
	"context"
	"log/slog"

	"messenger/internal/models"
	"messenger/internal/observability"
)

// Action names a guarded operation.
type Action string

const (
	ActionReadChat      Action = "read_chat"
	ActionPostMessage   Action = "post_message"
	ActionEditMessage   Action = "edit_message"
	ActionDeleteMessage Action = "delete_message"
	ActionAddMember     Action = "add_member"
	ActionRemoveMember  Action = "remove_member"
	ActionDeleteChat    Action = "delete_chat"
)

// Request carries everything a decision needs. Message is only consulted for
// edit and delete.
type Request struct {
	Action    Action
	Requester string
	Chat      *models.Chat
	IsMember  bool
	Message   *models.Message
}

// Allowed is the pure decision table.
//
// Reading and posting require membership (the initiator always qualifies).
// Only the sender edits a message. The sender or the chat initiator deletes a
// message. Membership changes and chat deletion belong to the initiator.
func Allowed(req Request) bool {
	if req.Chat == nil || req.Requester == "" {
		return false
	}
	owner := req.Chat.IsOwnedBy(req.Requester)

	switch req.Action {
	case ActionReadChat, ActionPostMessage:
		return owner || req.IsMember
	case ActionEditMessage:
		return req.Message != nil && req.Message.SenderLogin == req.Requester
	case ActionDeleteMessage:
		return req.Message != nil && (req.Message.SenderLogin == req.Requester || owner)
	case ActionAddMember, ActionRemoveMember, ActionDeleteChat:
		return owner
	default:
		return false
	}
}

var denials = map[Action]string{
	ActionReadChat:      "You are not a member of this chat",
	ActionPostMessage:   "You are not a member of this chat",
	ActionEditMessage:   "Only the sender can edit this message",
	ActionDeleteMessage: "Only the sender or the chat initiator can delete this message",
	ActionAddMember:     "Only the chat initiator can add members",
	ActionRemoveMember:  "Only the chat initiator can remove members",
	ActionDeleteChat:    "Only the chat initiator can delete this chat",
}

// Authorize returns a ForbiddenError when the request is denied.
func Authorize(ctx context.Context, req Request) error {
	if Allowed(req) {
		observability.AuthorizationDecisions.WithLabelValues(string(req.Action), "allow").Inc()
		return nil
	}
	observability.AuthorizationDecisions.WithLabelValues(string(req.Action), "deny").Inc()

	attrs := []any{"action", req.Action, "requester", req.Requester}
	if req.Chat != nil {
		attrs = append(attrs, "chat_id", req.Chat.ID)
	}
	slog.InfoContext(ctx, "authorization denied", attrs...)

	msg, ok := denials[req.Action]
	if !ok {
		msg = "Action not permitted"
	}
	return models.NewForbiddenError(msg)
}
