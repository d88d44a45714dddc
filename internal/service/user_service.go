package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/metrics"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// UserStore is the persistence the user service needs.  Every mutation
// takes the prepared audit entry and writes it in the same transaction,
// returning the log row id.  The MySQL implementation is
// repository.UserRepo.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, u *model.User, entry model.LogEntry) (uint64, error)
	UpdatePassword(ctx context.Context, id uint64, hash string, entry model.LogEntry) (uint64, error)
	SetActive(ctx context.Context, id uint64, active bool, entry model.LogEntry) (uint64, error)
	ReplaceRoles(ctx context.Context, userID uint64, roleIDs []uint64, entry model.LogEntry) (uint64, error)
	Delete(ctx context.Context, id uint64, entry model.LogEntry) (uint64, error)
}

// RoleStore resolves role names.  The MySQL implementation is
// repository.RoleRepo.
type RoleStore interface {
	ListByNames(ctx context.Context, names []string) ([]model.Role, error)
}

// UserService manages user records, authentication and roles.  Every
// mutation commits together with its audit entry.
type UserService struct {
	users      UserStore
	roles      RoleStore
	audit      AuditTrail
	tokens     TokenIssuer
	admin      config.AdminCredential
	bcryptCost int
	logger     *zap.Logger
}

func NewUserService(users UserStore, roles RoleStore, audit AuditTrail, tokens TokenIssuer,
	admin config.AdminCredential, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		roles:      roles,
		audit:      audit,
		tokens:     tokens,
		admin:      admin,
		bcryptCost: bcryptCost,
		logger:     logger.Named("UserService"),
	}
}

// Login checks the configured admin credential first and then the stored
// user.  It returns a token when either verifies and ErrInvalidCredentials
// otherwise.
func (s *UserService) Login(ctx context.Context, username, password string) (utils.AccessToken, error) {
	if s.admin.PasswordHash != "" && username == s.admin.Username &&
		utils.VerifyPassword(s.admin.PasswordHash, password) {
		s.logger.Info("admin login", zap.String("username", username))
		metrics.ObserveLogin("admin", true)
		return s.tokens.Issue(username, []string{model.RoleAdmin})
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("login for unknown user", zap.String("username", username))
			metrics.ObserveLogin("user", false)
			return utils.AccessToken{}, ErrInvalidCredentials
		}
		return utils.AccessToken{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.logger.Warn("login with wrong password", zap.String("username", username))
		metrics.ObserveLogin("user", false)
		return utils.AccessToken{}, ErrInvalidCredentials
	}
	s.logger.Info("user login", zap.String("username", username))
	metrics.ObserveLogin("user", true)
	return s.tokens.Issue(u.Username, u.RoleNames())
}

// Get returns the user with username or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, username string) (model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create registers a new active user.  An existing username yields
// ErrUsernameTaken and leaves the stored record untouched.
func (s *UserService) Create(ctx context.Context, in model.UserCreate) (model.User, error) {
	username := strings.TrimSpace(in.Username)
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return model.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, fmt.Errorf("check username: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		Name:         optional(in.Name),
		Surname:      optional(in.Surname),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		IsActive:     true,
		Roles:        []model.Role{},
	}
	entry, err := s.audit.Prepare(ctx, model.ActionCreate, fmt.Sprintf("User %s created", u.Username))
	if err != nil {
		return model.User{}, err
	}
	logID, err := s.users.Create(ctx, &u, entry)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	s.audit.Announce(ctx, u, entry, logID)
	return u, nil
}

// AssignRoles replaces the user's role set with the roles named.  Names
// that match no role are dropped.  A missing user yields ErrUserNotFound
// and no audit entry.
func (s *UserService) AssignRoles(ctx context.Context, username string, names []string) (model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	roles, err := s.roles.ListByNames(ctx, names)
	if err != nil {
		return model.User{}, fmt.Errorf("resolve roles: %w", err)
	}
	ids := make([]uint64, len(roles))
	names = make([]string, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
		names[i] = r.Name
	}
	desc := fmt.Sprintf("Roles assigned: [%s] for user %s", strings.Join(names, ", "), username)
	entry, err := s.audit.Prepare(ctx, model.ActionUpdate, desc)
	if err != nil {
		return model.User{}, err
	}
	logID, err := s.users.ReplaceRoles(ctx, u.ID, ids, entry)
	if err != nil {
		return model.User{}, fmt.Errorf("replace roles: %w", err)
	}
	u.Roles = roles
	s.audit.Announce(ctx, u, entry, logID)
	return u, nil
}

// UpdatePassword replaces the password once current verifies.  A wrong
// current password yields ErrInvalidCredentials and changes nothing.
func (s *UserService) UpdatePassword(ctx context.Context, username, current, next string) error {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		s.logger.Warn("password change with wrong current password", zap.String("username", username))
		return ErrInvalidCredentials
	}
	hash, err := utils.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	entry, err := s.audit.Prepare(ctx, model.ActionUpdate, fmt.Sprintf("User %s updated their password", username))
	if err != nil {
		return err
	}
	logID, err := s.users.UpdatePassword(ctx, u.ID, hash, entry)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.audit.Announce(ctx, u, entry, logID)
	return nil
}

// SetActive sets the is_active flag and records the transition.
func (s *UserService) SetActive(ctx context.Context, username string, active bool) (model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	desc := fmt.Sprintf("User %s changed state from %t to %t", username, u.IsActive, active)
	entry, err := s.audit.Prepare(ctx, model.ActionUpdate, desc)
	if err != nil {
		return model.User{}, err
	}
	logID, err := s.users.SetActive(ctx, u.ID, active, entry)
	if err != nil {
		return model.User{}, fmt.Errorf("set active: %w", err)
	}
	u.IsActive = active
	s.audit.Announce(ctx, u, entry, logID)
	return u, nil
}

// Delete removes the user and records a snapshot of them in the same
// transaction.  The password hash is not part of the snapshot.
func (s *UserService) Delete(ctx context.Context, username string) error {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("snapshot user: %w", err)
	}
	entry, err := s.audit.Prepare(ctx, model.ActionDelete, "User deleted. "+string(snapshot))
	if err != nil {
		return err
	}
	logID, err := s.users.Delete(ctx, u.ID, entry)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.audit.Announce(ctx, u, entry, logID)
	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}

// Logs returns the audit entries of the user with username.
func (s *UserService) Logs(ctx context.Context, username string) ([]model.UserLog, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.audit.ListByUser(ctx, u.ID)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
