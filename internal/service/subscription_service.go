package service

import (
	"context"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/observability"
	"vidtube/internal/repository"
)

type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	events   EventPublisher
}

type ListSubscriptionsInput struct {
	UserID uint
	Page   int
	Limit  int
}

func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	events EventPublisher,
) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo, events: events}
}

// ToggleSubscription flips subscriberID's subscription to channelID and
// reports whether it is subscribed afterwards.
func (s *SubscriptionService) ToggleSubscription(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	if _, err := s.existingUser(ctx, channelID, "Channel not found"); err != nil {
		return false, err
	}
	if subscriberID == channelID {
		return false, models.NewValidationError("You cannot subscribe to your own channel")
	}

	subscribed, err := s.subRepo.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return false, err
	}

	outcome := "removed"
	if subscribed {
		outcome = "added"
		notify(ctx, s.events, channelID, notifications.Event{
			Type:    notifications.EventSubscriberAdded,
			ActorID: subscriberID,
		})
	}
	observability.ToggleOutcomes.WithLabelValues("subscription", outcome).Inc()
	cache.InvalidateChannelStats(ctx, channelID)
	return subscribed, nil
}

func (s *SubscriptionService) ChannelSubscribers(ctx context.Context, in ListSubscriptionsInput) ([]*models.Subscription, error) {
	if _, err := s.existingUser(ctx, in.UserID, "Channel not found"); err != nil {
		return nil, err
	}
	subs, err := s.subRepo.ListSubscribers(ctx, in.UserID, models.NewPage(in.Page, in.Limit))
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, models.NewNotFoundError("No subscribers found")
	}
	return subs, nil
}

func (s *SubscriptionService) SubscribedChannels(ctx context.Context, in ListSubscriptionsInput) ([]*models.Subscription, error) {
	if _, err := s.existingUser(ctx, in.UserID, "User not found"); err != nil {
		return nil, err
	}
	subs, err := s.subRepo.ListSubscriptions(ctx, in.UserID, models.NewPage(in.Page, in.Limit))
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, models.NewNotFoundError("No subscriptions found")
	}
	return subs, nil
}

func (s *SubscriptionService) existingUser(ctx context.Context, id uint, missing string) (*models.User, error) {
	user, err := s.userRepo.GetProfile(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewNotFoundError(missing)
		}
		return nil, err
	}
	return user, nil
}
