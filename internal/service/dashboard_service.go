package service

import (
	"context"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/repository"
)

type DashboardService struct {
	dashboardRepo repository.DashboardRepository
	videoRepo     repository.VideoRepository
	userRepo      repository.UserRepository
}

func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	videoRepo repository.VideoRepository,
	userRepo repository.UserRepository,
) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		videoRepo:     videoRepo,
		userRepo:      userRepo,
	}
}

// ChannelStats merges video, tweet and subscriber totals with the user's
// public profile. Results are cached briefly.
func (s *DashboardService) ChannelStats(ctx context.Context, userID uint) (*models.ChannelStats, error) {
	var stats models.ChannelStats
	err := cache.Aside(ctx, cache.ChannelStatsKey(userID), &stats, cache.ChannelStatsTTL, func() error {
		user, err := s.userRepo.GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		videoStats, err := s.dashboardRepo.VideoStats(ctx, userID)
		if err != nil {
			return err
		}
		tweetStats, err := s.dashboardRepo.TweetStats(ctx, userID)
		if err != nil {
			return err
		}
		subscribers, err := s.dashboardRepo.SubscriberCount(ctx, userID)
		if err != nil {
			return err
		}

		stats = models.ChannelStats{
			User:             user.PublicProfile(),
			VideoStats:       videoStats,
			TweetStats:       tweetStats,
			TotalSubscribers: subscribers,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ChannelVideos lists every video of the channel, drafts included, newest first.
func (s *DashboardService) ChannelVideos(ctx context.Context, userID uint) ([]*models.Video, error) {
	videos, err := s.videoRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, models.NewNotFoundError("No videos found")
	}
	return videos, nil
}
