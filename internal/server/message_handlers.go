package server

import (
	"messenger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMessages handles GET /api/chats/:id/messages?offset=0&view=chronological
func (s *Server) GetMessages(c *fiber.Ctx) error {
	chatID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	view, err := service.ParseView(c.Query("view"))
	if err != nil {
		return respondError(c, err)
	}

	page, err := s.messageService.FetchPage(c.UserContext(), service.PageRequest{
		ChatID: chatID,
		Viewer: currentLogin(c),
		View:   view,
		Offset: c.QueryInt("offset", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

type messageRequest struct {
	Text string `json:"text"`
}

// PostMessage handles POST /api/chats/:id/messages
func (s *Server) PostMessage(c *fiber.Ctx) error {
	chatID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req messageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.messageService.PostMessage(c.UserContext(), chatID, currentLogin(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// EditMessage handles PUT /api/chats/:id/messages/:messageId
func (s *Server) EditMessage(c *fiber.Ctx) error {
	chatID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	msgID, err := parseID(c, "messageId")
	if err != nil {
		return nil
	}
	var req messageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.messageService.EditMessage(c.UserContext(), currentLogin(c), chatID, msgID, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg)
}

// DeleteMessage handles DELETE /api/chats/:id/messages/:messageId
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	chatID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	msgID, err := parseID(c, "messageId")
	if err != nil {
		return nil
	}

	if err := s.messageService.DeleteMessage(c.UserContext(), currentLogin(c), chatID, msgID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
