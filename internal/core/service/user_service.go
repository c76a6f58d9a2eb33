package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
)

// UserService implements account management: profile updates, password
// changes, status-flag toggles and role assignment.
type UserService struct {
	users ports.UserRepository
	roles ports.RoleRepository
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, roles ports.RoleRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, roles: roles, log: log}
}

func (s *UserService) GetAll(ctx context.Context) ([]domain.User, error) {
	return s.users.FindAll(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

// UpdateProfile applies non-empty profile fields. An email change re-checks
// uniqueness before writing; the store's unique index backs this up against
// concurrent writers.
func (s *UserService) UpdateProfile(ctx context.Context, id, firstName, lastName, email string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	if email != "" && email != user.Email {
		if _, err := s.users.FindByEmail(ctx, email); err == nil {
			return nil, domain.ErrDuplicateEmail
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user.Email = email
	}

	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("username", user.Username).Msg("password changed")
	return nil
}

func (s *UserService) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Enabled = enabled
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *UserService) SetLocked(ctx context.Context, id string, locked bool) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.AccountNonLocked = !locked
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

// AssignRole adds a role edge to the user. Assigning an already-held role is
// a no-op, keeping the edge set a set.
func (s *UserService) AssignRole(ctx context.Context, userID, roleID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return nil, err
	}

	for _, id := range user.RoleIDs {
		if id == roleID {
			return user, nil
		}
	}
	user.RoleIDs = append(user.RoleIDs, roleID)
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

// RemoveRole drops the role edge; the role itself is untouched.
func (s *UserService) RemoveRole(ctx context.Context, userID, roleID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return nil, err
	}

	kept := user.RoleIDs[:0]
	for _, id := range user.RoleIDs {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	user.RoleIDs = kept
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

// Delete removes the user. Role edges live on the user document, so deleting
// it drops the links without touching the roles.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("username", user.Username).Msg("user deleted")
	return nil
}
