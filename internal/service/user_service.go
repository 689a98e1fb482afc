package service

import (
	"context"
	"log/slog"
	"strings"

	"messenger/internal/cache"
	"messenger/internal/models"
	"messenger/internal/observability"
	"messenger/internal/repository"
	"messenger/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService owns account lifecycle and profile reads.
type UserService struct {
	users repository.UserRepository
	cache *cache.Cache
}

// CreateUserInput is the input for signing up.
type CreateUserInput struct {
	Login    string
	Password string
	Phone    string
}

// NewUserService returns a new UserService. c may wrap a nil client.
func NewUserService(users repository.UserRepository, c *cache.Cache) *UserService {
	return &UserService{users: users, cache: c}
}

// CreateUser provisions the contact list, the block list and then the user,
// atomically. A taken login is a ValidationError.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (user *models.User, err error) {
	ctx, finish := observability.StartOperation(ctx, "user.create", in.Login)
	defer func() { finish(err) }()

	in.Login = strings.TrimSpace(in.Login)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validation.ValidateSignUp(validation.SignUp{Login: in.Login, Password: in.Password, Phone: in.Phone}); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewStoreError(err)
	}

	user = &models.User{
		Login:    in.Login,
		Password: string(hashed),
		Phone:    in.Phone,
	}
	if err := s.users.CreateWithLists(ctx, user); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			return nil, models.NewValidationError("login " + in.Login + " is already taken")
		}
		return nil, err
	}

	slog.InfoContext(ctx, "user created", "login", user.Login)
	return user, nil
}

// LogIn returns the user whose credential matches. Unknown logins and wrong
// passwords are indistinguishable NotFoundErrors.
func (s *UserService) LogIn(ctx context.Context, login, password string) (user *models.User, err error) {
	ctx, finish := observability.StartOperation(ctx, "user.login", login)
	defer func() { finish(err) }()

	user, err = s.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("User", login)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewNotFoundError("User", login)
	}
	return user, nil
}

// GetUser returns the profile of login, served from cache when possible.
func (s *UserService) GetUser(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	_, err := s.cache.Aside(ctx, cache.UserKey(login), &user, cache.UserTTL, func() error {
		u, err := s.users.GetByLogin(ctx, login)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetStatus returns the current status text of login.
func (s *UserService) GetStatus(ctx context.Context, login string) (string, error) {
	user, err := s.GetUser(ctx, login)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// UpdateStatus replaces the status of login and returns the stored value.
func (s *UserService) UpdateStatus(ctx context.Context, login, status string) (string, error) {
	if err := validation.ValidateStatus(status); err != nil {
		return "", err
	}
	if err := s.users.UpdateStatus(ctx, login, status); err != nil {
		return "", err
	}
	s.cache.Invalidate(ctx, cache.UserKey(login))
	return status, nil
}

// DeleteUser removes the user row. Lists, list and chat memberships, owned
// chats and sent messages are left behind.
func (s *UserService) DeleteUser(ctx context.Context, login string) (err error) {
	ctx, finish := observability.StartOperation(ctx, "user.delete", login)
	defer func() { finish(err) }()

	if err := s.users.Delete(ctx, login); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, login)
	slog.InfoContext(ctx, "user deleted", "login", login)
	return nil
}
