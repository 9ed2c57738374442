package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/accessly-backend/internal/data/repos"
	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/domain/user"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

// ProfileUpdate holds the name fields a client sent; nil fields are kept.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
}

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	scanRepo repos.ScanResultRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, scanRepo repos.ScanResultRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		scanRepo: scanRepo,
	}
}

// GetProfile loads the user with ScansAll filled from the scans it owns,
// newest first.
func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user not found")
	}
	ids, err := us.scanRepo.ListIDsByUser(ctx, nil, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list user scans: %w", err))
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	u := users[0]
	u.ScansAll = ids
	return u, nil
}

// UpdateProfile changes the name fields present in in and nothing else.
func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*types.User, error) {
	if in.FirstName != nil {
		if err := user.ValidateFirstName(*in.FirstName); err != nil {
			return nil, err
		}
	}
	if in.LastName != nil {
		if err := user.ValidateLastName(*in.LastName); err != nil {
			return nil, err
		}
	}
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{userID})
		if err != nil {
			return apierr.Internal(fmt.Errorf("load user: %w", err))
		}
		if len(users) == 0 {
			return apierr.NotFound("user not found")
		}
		if err := us.userRepo.UpdateName(ctx, tx, userID, in.FirstName, in.LastName); err != nil {
			return apierr.Internal(fmt.Errorf("update user: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return us.GetProfile(ctx, userID)
}
