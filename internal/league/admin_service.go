package league

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage/models"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

// AdminService manages user accounts and admin privileges.
type AdminService struct {
	users   repository.UserRepository
	players repository.PlayerRepository
	logger  *slog.Logger
}

// NewAdminService creates an admin service.
func NewAdminService(users repository.UserRepository, players repository.PlayerRepository, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{users: users, players: players, logger: logger}
}

// SyncUser mirrors an identity-provider account into the league database
// and provisions the linked player on first sight. The server runs it for
// every authenticated request, so profiles stay fresh without a separate
// sign-up step.
func (s *AdminService) SyncUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return &ValidationError{Field: "id", Message: "user id is required"}
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return &PersistenceError{Op: "sync user", Err: err}
	}

	_, err := s.players.GetByUserID(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		name := user.DisplayName
		if name == "" {
			name = user.Email
		}
		player := &models.Player{UserID: &user.ID, DisplayName: name}
		if err := s.players.Create(ctx, player); err != nil {
			return &PersistenceError{Op: "create player", Err: err}
		}
		s.logger.Info("provisioned player", "user", user.ID, "player", player.ID)
		return nil
	}
	if err != nil {
		return &PersistenceError{Op: "load player", Err: err}
	}
	return nil
}

// ListUsers retrieves all known accounts.
func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	return users, nil
}

// GetUserByEmail looks up an account by email address.
func (s *AdminService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "email is required"}
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, wrapStorage("load user", "user", email, err)
	}
	return user, nil
}

// SetAdmin grants or revokes admin privileges.
func (s *AdminService) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	if err := s.users.SetAdmin(ctx, userID, isAdmin); err != nil {
		return wrapStorage("update admin flag", "user", userID, err)
	}
	s.logger.Info("changed admin flag", "user", userID, "admin", isAdmin)
	return nil
}
