package server

import (
	"fmt"
	"time"

	"messenger/internal/middleware"
	"messenger/internal/models"
	"messenger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 24 * time.Hour

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Login:    req.Login,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user.Login)
	if err != nil {
		return respondError(c, models.NewStoreError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.LogIn(c.UserContext(), req.Login, req.Password)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return respondError(c, models.NewUnauthorizedError("Invalid login or password"))
		}
		return respondError(c, err)
	}

	token, err := s.generateToken(user.Login)
	if err != nil {
		return respondError(c, models.NewStoreError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

func (s *Server) generateToken(login string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   login,
		Issuer:    middleware.TokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
