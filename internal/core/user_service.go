package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/db"
	"lifenotes-backend-go/internal/models"
)

// Roles accepted by UpdateUser. The empty role is a regular user.
var assignableRoles = map[string]bool{"": true, "user": true, models.RoleAdmin: true}

// userService implements the UserService interface.
type userService struct {
	userRepo  db.UserRepository
	roleCache RoleCache // nil disables caching
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService creates a new UserService. roleCache may be nil.
func NewUserService(ur db.UserRepository, roleCache RoleCache, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepo:  ur,
		roleCache: roleCache,
		validate:  validator.New(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// UpsertUser saves a profile on login or registration. New users start with
// no role and isPremium=false; existing users keep both.
func (s *userService) UpsertUser(ctx context.Context, req models.UpsertUserRequest) (bool, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.PhotoURL = strings.TrimSpace(req.PhotoURL)
	if err := s.validate.Struct(req); err != nil {
		return false, invalidRequest("%v", err)
	}

	now := s.now()
	user := &models.User{
		Email:     req.Email,
		Name:      req.Name,
		PhotoURL:  req.PhotoURL,
		IsPremium: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.userRepo.Upsert(ctx, user)
	if err != nil {
		s.logger.Error("Failed to upsert user", zap.String("email", req.Email), zap.Error(err))
		return false, storeError("upsert user", err)
	}
	s.invalidateRole(ctx, req.Email)
	if created {
		s.logger.Info("New user created", zap.String("email", req.Email))
	}
	return created, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalidRequest("email is required")
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError("get user", err)
	}
	return user, nil
}

// GetRole reads through the role cache when one is configured. Cache failures
// are logged and fall back to the store.
func (s *userService) GetRole(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", nil
	}

	if s.roleCache != nil {
		role, found, err := s.roleCache.Get(ctx, email)
		if err != nil {
			s.logger.Warn("Role cache read failed", zap.String("email", email), zap.Error(err))
		} else if found {
			return role, nil
		}
	}

	role := ""
	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		role = user.Role
	case errors.Is(err, db.ErrNotFound):
	default:
		return "", storeError("get role", err)
	}

	if s.roleCache != nil {
		if err := s.roleCache.Set(ctx, email, role); err != nil {
			s.logger.Warn("Role cache write failed", zap.String("email", email), zap.Error(err))
		}
	}
	return role, nil
}

// UpdateUser applies an allowlisted patch: name, photoURL and role.
func (s *userService) UpdateUser(ctx context.Context, email string, patch map[string]interface{}) error {
	email = normalizeEmail(email)
	if email == "" {
		return invalidRequest("email is required")
	}
	if len(patch) == 0 {
		return invalidRequest("update body has no fields")
	}

	fields := make(map[string]interface{}, len(patch)+1)
	for key, raw := range patch {
		value, ok := raw.(string)
		if !ok {
			return invalidRequest("field %q must be a string", key)
		}
		value = strings.TrimSpace(value)
		switch key {
		case "name":
			if err := s.validate.Var(value, "max=200"); err != nil {
				return invalidRequest("name is too long")
			}
		case "photoURL":
			if err := s.validate.Var(value, "omitempty,url"); err != nil {
				return invalidRequest("photoURL must be a URL")
			}
		case "role":
			if !assignableRoles[value] {
				return invalidRequest("role %q is not allowed", value)
			}
		default:
			return invalidRequest("field %q cannot be updated", key)
		}
		fields[key] = value
	}
	fields["updatedAt"] = s.now()

	if err := s.userRepo.Update(ctx, email, fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeError("update user", err)
	}
	s.invalidateRole(ctx, email)
	return nil
}

func (s *userService) SetPremium(ctx context.Context, email, sessionID string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, invalidRequest("email is required")
	}
	changed, err := s.userRepo.SetPremium(ctx, email, sessionID, s.now())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, storeError("set premium", err)
	}
	if changed {
		s.logger.Info("User upgraded to premium", zap.String("email", email), zap.String("sessionID", sessionID))
	}
	return changed, nil
}

func (s *userService) invalidateRole(ctx context.Context, email string) {
	if s.roleCache == nil {
		return
	}
	if err := s.roleCache.Delete(ctx, email); err != nil {
		s.logger.Warn("Role cache invalidation failed", zap.String("email", email), zap.Error(err))
	}
}
