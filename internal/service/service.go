// Package service provides the messenger's business logic: accounts and
// relationship lists, chats, the message ledger and paginated reads.
package service

import (
	"context"
	"time"

	"messenger/internal/models"
	"messenger/internal/repository"
)

// Clock returns the current time. Tests substitute a deterministic one.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// chatAccess loads a chat and reports whether login holds a membership edge.
func chatAccess(ctx context.Context, chats repository.ChatRepository, chatID uint, login string) (*models.Chat, bool, error) {
	chat, err := chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, false, err
	}
	for _, m := range chat.Members {
		if m.MemberLogin == login {
			return chat, true, nil
		}
	}
	return chat, false, nil
}
