package repository

import (
	"context"
	"errors"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository defines persistence operations for channel subscriptions.
type SubscriptionRepository interface {
	// Toggle reports whether the subscriber follows the channel afterwards.
	Toggle(ctx context.Context, subscriberID, channelID uint) (bool, error)
	ListSubscribers(ctx context.Context, channelID uint, page models.Page) ([]*models.Subscription, error)
	ListSubscriptions(ctx context.Context, subscriberID uint, page models.Page) ([]*models.Subscription, error)
	CountSubscribers(ctx context.Context, channelID uint) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

type subscriptionRow struct {
	models.Subscription
	OwnerColumns
}

func (r *subscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	db := r.db.WithContext(ctx)

	var existing models.Subscription
	err := db.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Delete(&models.Subscription{}, existing.ID).Error; err != nil {
			return false, models.NewInternalError(err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub := &models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
		if err := db.Create(sub).Error; err != nil {
			if isUniqueConstraintError(err) {
				return true, nil
			}
			return false, models.NewInternalError(err)
		}
		return true, nil
	default:
		return false, models.NewInternalError(err)
	}
}

// list joins the user on the side of the relation that is not being filtered on.
func (r *subscriptionRepository) list(ctx context.Context, filterColumn, joinColumn string, id uint, page models.Page) ([]subscriptionRow, error) {
	var rows []subscriptionRow
	err := readDB(r.db).WithContext(ctx).
		Table("subscriptions").
		Select("subscriptions.*, "+ownerProjection).
		Joins("JOIN users ON users.id = subscriptions."+joinColumn).
		Where("subscriptions."+filterColumn+" = ?", id).
		Order("subscriptions.created_at DESC").
		Order("subscriptions.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *subscriptionRepository) ListSubscribers(ctx context.Context, channelID uint, page models.Page) ([]*models.Subscription, error) {
	rows, err := r.list(ctx, "channel_id", "subscriber_id", channelID, page)
	if err != nil {
		return nil, err
	}
	subs := make([]*models.Subscription, 0, len(rows))
	for _, row := range rows {
		s := row.Subscription
		s.Subscriber = row.owner(s.SubscriberID)
		subs = append(subs, &s)
	}
	return subs, nil
}

func (r *subscriptionRepository) ListSubscriptions(ctx context.Context, subscriberID uint, page models.Page) ([]*models.Subscription, error) {
	rows, err := r.list(ctx, "subscriber_id", "channel_id", subscriberID, page)
	if err != nil {
		return nil, err
	}
	subs := make([]*models.Subscription, 0, len(rows))
	for _, row := range rows {
		s := row.Subscription
		s.Channel = row.owner(s.ChannelID)
		subs = append(subs, &s)
	}
	return subs, nil
}

func (r *subscriptionRepository) CountSubscribers(ctx context.Context, channelID uint) (int64, error) {
	var total int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&total).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}
