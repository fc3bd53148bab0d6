package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/logger"
	"github.com/alexhq/alex-backend/internal/repos"
	"github.com/alexhq/alex-backend/internal/types"
	"github.com/alexhq/alex-backend/internal/utils"
)

type UserUpdate struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}

type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update UserUpdate) (*types.User, error)
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

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user not found")
	}
	return users[0], nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, update UserUpdate) (*types.User, error) {
	user, err := us.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		name := utils.ParseInputString(*update.FirstName)
		if name == "" {
			return nil, apierr.Validation("first name cannot be empty")
		}
		user.FirstName = name
	}
	if update.LastName != nil {
		name := utils.ParseInputString(*update.LastName)
		if name == "" {
			return nil, apierr.Validation("last name cannot be empty")
		}
		user.LastName = name
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}

	updated, err := us.userRepo.Update(ctx, nil, user)
	if err != nil {
		return nil, fmt.Errorf("Failed to update user: %w", err)
	}
	return updated, nil
}
