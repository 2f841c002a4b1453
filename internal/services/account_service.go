package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// ProfileInput carries profile edits. Empty fields keep their current value.
type ProfileInput struct {
	Username string `json:"username"`
	Country  string `json:"country"`
}

// AccountService handles registration, login and profiles.
type AccountService struct {
	users    store.UserStore
	registry *CategoryRegistry
	hasher   auth.PasswordHasher
	logger   *applog.Logger

	newID func() string
	now   func() time.Time
}

func NewAccountService(users store.UserStore, registry *CategoryRegistry, hasher auth.PasswordHasher, logger *applog.Logger) *AccountService {
	return &AccountService{
		users:    users,
		registry: registry,
		hasher:   hasher,
		logger:   componentLogger(logger, applog.ComponentAccount),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Register validates the form, stores the user with a hashed credential and
// seeds the new user's category registry.
func (s *AccountService) Register(ctx context.Context, in core.RegistrationInput) (core.User, error) {
	existing, err := s.usersWithEmail(ctx, in.Email)
	if err != nil {
		return core.User{}, err
	}

	u, err := core.ValidateRegistration(in, existing, s.newID)
	if err != nil {
		s.logger.InfoContext(ctx, "Registration rejected", applog.FieldKind, string(core.KindOf(err)))
		return core.User{}, err
	}

	if u.Password, err = s.hasher.Hash(u.Password); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = s.now()

	if err := s.users.AddUser(ctx, u); err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return core.User{}, core.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("add user: %w", err)
	}

	if s.registry != nil {
		if err := s.registry.InitializeDefaults(ctx, u.ID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to seed categories for new user",
				applog.FieldOwnerID, u.ID,
				applog.FieldError, err)
		}
	}

	s.logger.InfoContext(ctx, "User registered",
		applog.FieldOwnerID, u.ID,
		applog.FieldOperation, applog.OpRegister)
	return u, nil
}

// Login returns the user whose email and password match.
func (s *AccountService) Login(ctx context.Context, in core.LoginInput) (core.User, error) {
	var candidates []core.User
	if strings.TrimSpace(in.Email) != "" && in.Password != "" {
		var err error
		if candidates, err = s.usersWithEmail(ctx, in.Email); err != nil {
			return core.User{}, err
		}
	}

	u, err := core.ValidateLogin(in, candidates, s.hasher)
	if err != nil {
		s.logger.WarnContext(ctx, "Login rejected",
			applog.FieldKind, string(core.KindOf(err)),
			applog.FieldOperation, applog.OpLogin)
		return core.User{}, err
	}
	return u, nil
}

func (s *AccountService) Profile(ctx context.Context, userID string) (core.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (core.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if name := strings.TrimSpace(in.Username); name != "" {
		u.Username = name
	}
	if country := strings.TrimSpace(in.Country); country != "" {
		u.Country = country
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *AccountService) usersWithEmail(ctx context.Context, email string) ([]core.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}
	u, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return []core.User{u}, nil
	case errors.Is(err, core.ErrNotFound):
		return nil, nil
	}
	return nil, fmt.Errorf("find user by email: %w", err)
}
