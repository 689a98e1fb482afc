package server

import (
	"messenger/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentLogin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:login
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), c.Params("login"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"login":  user.Login,
		"status": user.Status,
	})
}

// GetMyStatus handles GET /api/users/me/status
func (s *Server) GetMyStatus(c *fiber.Ctx) error {
	status, err := s.userService.GetStatus(c.UserContext(), currentLogin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// UpdateMyStatus handles PUT /api/users/me/status
func (s *Server) UpdateMyStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	status, err := s.userService.UpdateStatus(c.UserContext(), currentLogin(c), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// DeleteMyAccount handles DELETE /api/users/me
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteUser(c.UserContext(), currentLogin(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMembers handles GET /api/lists/:kind
func (s *Server) ListMembers(c *fiber.Ctx) error {
	kind, err := models.ParseListKind(c.Params("kind"))
	if err != nil {
		return respondError(c, err)
	}

	members, err := s.relationshipService.CollectMembers(c.UserContext(), kind, currentLogin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"kind":    kind,
		"members": members,
	})
}

// AddToList handles POST /api/lists/:kind
func (s *Server) AddToList(c *fiber.Ctx) error {
	kind, err := models.ParseListKind(c.Params("kind"))
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Login string `json:"login"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.relationshipService.AddToList(c.UserContext(), kind, currentLogin(c), req.Login); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"kind":  kind,
		"login": req.Login,
	})
}

// RemoveFromList handles DELETE /api/lists/:kind/:login
func (s *Server) RemoveFromList(c *fiber.Ctx) error {
	kind, err := models.ParseListKind(c.Params("kind"))
	if err != nil {
		return respondError(c, err)
	}

	if err := s.relationshipService.RemoveFromList(c.UserContext(), kind, currentLogin(c), c.Params("login")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
