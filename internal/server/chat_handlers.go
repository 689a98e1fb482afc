package server

import (
	"messenger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateChat handles POST /api/chats
func (s *Server) CreateChat(c *fiber.Ctx) error {
	var req struct {
		Participants   []string `json:"participants"`
		OpeningMessage string   `json:"opening_message"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	chat, err := s.chatService.CreateChat(c.UserContext(), service.CreateChatInput{
		Initiator:      currentLogin(c),
		Participants:   req.Participants,
		OpeningMessage: req.OpeningMessage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

// ListMyChats handles GET /api/chats
func (s *Server) ListMyChats(c *fiber.Ctx) error {
	chats, err := s.chatService.ListChatsForUser(c.UserContext(), currentLogin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(chats)
}

// ListOwnedChats handles GET /api/chats/owned
func (s *Server) ListOwnedChats(c *fiber.Ctx) error {
	chats, err := s.chatService.ListOwnedChats(c.UserContext(), currentLogin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(chats)
}

// GetChat handles GET /api/chats/:id
func (s *Server) GetChat(c *fiber.Ctx) error {
	chatID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	chat, err := s.chatService.GetChat(c.UserContext(), currentLogin(c), chatID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(chat)
}

// DeleteChat handles DELETE /api/chats/:id
func (s *Server) DeleteChat(c *fiber.Ctx) error {
	chatID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.chatService.DeleteChat(c.UserContext(), currentLogin(c), chatID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddChatMember handles POST /api/chats/:id/members
func (s *Server) AddChatMember(c *fiber.Ctx) error {
	chatID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Login string `json:"login"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.chatService.AddMember(c.UserContext(), currentLogin(c), chatID, req.Login); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"chat_id": chatID,
		"login":   req.Login,
	})
}

// RemoveChatMember handles DELETE /api/chats/:id/members/:login
func (s *Server) RemoveChatMember(c *fiber.Ctx) error {
	chatID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.chatService.RemoveMember(c.UserContext(), currentLogin(c), chatID, c.Params("login")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
