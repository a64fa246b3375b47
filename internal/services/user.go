package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error)
	PromoteToAdmin(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, authz.NotFound("user not found")
	}
	return user, nil
}

// PromoteToAdmin is role-gated at the policy level: only an admin
// reaches this call.
func (us *userService) PromoteToAdmin(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, authz.NotFound("user not found")
	}
	if user.Role == types.RoleAdmin {
		return user, nil
	}
	if err := us.userRepo.UpdateRole(ctx, nil, user.ID, types.RoleAdmin); err != nil {
		return nil, fmt.Errorf("updating role: %w", err)
	}
	user.Role = types.RoleAdmin
	return user, nil
}
