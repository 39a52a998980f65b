package repository

import (
	"context"
	"errors"

	"vidtube/internal/cache"
	"vidtube/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetByID loads the full row, credentials included.
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetProfile loads the user without credentials; served from cache when possible.
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	SetRefreshToken(ctx context.Context, userID uint, token *string) error
	SwapRefreshToken(ctx context.Context, userID uint, presented, next string) (bool, error)
	ChannelProfile(ctx context.Context, username string, viewerID uint) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uint) ([]*models.Video, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return &user, nil
}

func (r *userRepository) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).
			Omit("password", "refresh_token").
			First(&user, id).Error; err != nil {
			return notFoundOr(err, "User not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	user.RefreshToken = nil
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalErrorMsg("An error occurred while creating the user", err)
	}
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return models.NewConflictError("Email is already in use")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User not found")
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) SetRefreshToken(ctx context.Context, userID uint, token *string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

func (r *userRepository) SwapRefreshToken(ctx context.Context, userID uint, presented, next string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", userID, presented).
		Update("refresh_token", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) ChannelProfile(ctx context.Context, username string, viewerID uint) (*models.ChannelProfile, error) {
	db := readDB(r.db).WithContext(ctx)

	var user models.User
	if err := db.Omit("password", "refresh_token").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "Channel does not exist")
	}

	profile := &models.ChannelProfile{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		Email:      user.Email,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
	}

	if err := db.Model(&models.Subscription{}).
		Where("channel_id = ?", user.ID).
		Count(&profile.SubscribersCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Subscription{}).
		Where("subscriber_id = ?", user.ID).
		Count(&profile.ChannelsSubscribedToCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var mine int64
	if err := db.Model(&models.Subscription{}).
		Where("channel_id = ? AND subscriber_id = ?", user.ID, viewerID).
		Count(&mine).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	profile.IsSubscribed = mine > 0

	return profile, nil
}

// WatchHistory returns each watched video once, most recently watched first.
func (r *userRepository) WatchHistory(ctx context.Context, userID uint) ([]*models.Video, error) {
	var rows []videoRow
	err := readDB(r.db).WithContext(ctx).
		Table("watch_histories").
		Select("videos.*, "+ownerProjection).
		Joins("JOIN videos ON videos.id = watch_histories.video_id").
		Joins("JOIN users ON users.id = videos.owner_id").
		Where("watch_histories.user_id = ?", userID).
		Group("videos.id, users.id").
		Order("MAX(watch_histories.id) DESC").
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return videoRowsToModels(rows), nil
}
