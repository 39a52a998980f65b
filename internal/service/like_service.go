package service

import (
	"context"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/observability"
	"vidtube/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
	events      EventPublisher
}

// LikeResult is the outcome of a toggle.
type LikeResult struct {
	Liked      bool
	TotalLikes int64
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	videoRepo repository.VideoRepository,
	commentRepo repository.CommentRepository,
	tweetRepo repository.TweetRepository,
	events EventPublisher,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
		tweetRepo:   tweetRepo,
		events:      events,
	}
}

func (s *LikeService) ToggleVideoLike(ctx context.Context, userID, videoID uint) (*LikeResult, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished {
		return nil, models.NewForbiddenError("Video is not published")
	}
	return s.toggle(ctx, userID, models.LikeTargetVideo, video.ID, video.OwnerID)
}

func (s *LikeService) ToggleCommentLike(ctx context.Context, userID, commentID uint) (*LikeResult, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return s.toggle(ctx, userID, models.LikeTargetComment, comment.ID, comment.OwnerID)
}

func (s *LikeService) ToggleTweetLike(ctx context.Context, userID, tweetID uint) (*LikeResult, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	return s.toggle(ctx, userID, models.LikeTargetTweet, tweet.ID, tweet.OwnerID)
}

func (s *LikeService) toggle(ctx context.Context, userID uint, target models.LikeTarget, targetID, ownerID uint) (*LikeResult, error) {
	liked, err := s.likeRepo.Toggle(ctx, userID, target, targetID)
	if err != nil {
		return nil, err
	}
	cache.InvalidateChannelStats(ctx, ownerID)
	total, err := s.likeRepo.Count(ctx, target, targetID)
	if err != nil {
		return nil, err
	}

	outcome := "removed"
	if liked {
		outcome = "added"
		notify(ctx, s.events, ownerID, notifications.Event{
			Type:    notifications.EventLikeAdded,
			ActorID: userID,
			Payload: map[string]any{"target": string(target), "targetId": targetID},
		})
	}
	observability.ToggleOutcomes.WithLabelValues(string(target), outcome).Inc()
	return &LikeResult{Liked: liked, TotalLikes: total}, nil
}

func (s *LikeService) LikedVideos(ctx context.Context, userID uint) ([]*models.Like, error) {
	likes, err := s.likeRepo.ListLikedVideos(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		return nil, models.NewNotFoundError("No liked videos found")
	}
	return likes, nil
}

func (s *LikeService) LikedComments(ctx context.Context, userID uint) ([]*models.Like, error) {
	likes, err := s.likeRepo.ListLikedComments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		return nil, models.NewNotFoundError("No liked comments found")
	}
	return likes, nil
}

func (s *LikeService) LikedTweets(ctx context.Context, userID uint) ([]*models.Like, error) {
	likes, err := s.likeRepo.ListLikedTweets(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		return nil, models.NewNotFoundError("No liked tweets found")
	}
	return likes, nil
}
