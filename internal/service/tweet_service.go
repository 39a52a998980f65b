package service

import (
	"context"
	"strings"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/validation"
)

type TweetService struct {
	tweetRepo repository.TweetRepository
	userRepo  repository.UserRepository
}

type CreateTweetInput struct {
	UserID  uint
	Content string
}

type UpdateTweetInput struct {
	UserID  uint
	TweetID uint
	Content string
}

func NewTweetService(tweetRepo repository.TweetRepository, userRepo repository.UserRepository) *TweetService {
	return &TweetService{tweetRepo: tweetRepo, userRepo: userRepo}
}

func tweetContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if err := validation.ValidateContent(content); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	return content, nil
}

func (s *TweetService) CreateTweet(ctx context.Context, in CreateTweetInput) (*models.Tweet, error) {
	content, err := tweetContent(in.Content)
	if err != nil {
		return nil, err
	}
	tweet := &models.Tweet{Content: content, OwnerID: in.UserID}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	cache.InvalidateChannelStats(ctx, in.UserID)
	return tweet, nil
}

func (s *TweetService) UserTweets(ctx context.Context, username string) ([]*models.Tweet, error) {
	username = validation.NormalizeUsername(username)
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User not found")
	}

	tweets, err := s.tweetRepo.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(tweets) == 0 {
		return nil, models.NewNotFoundError("No tweets found")
	}
	return tweets, nil
}

func (s *TweetService) UpdateTweet(ctx context.Context, in UpdateTweetInput) (*models.Tweet, error) {
	tweet, err := s.ownedTweet(ctx, in.UserID, in.TweetID)
	if err != nil {
		return nil, err
	}
	content, err := tweetContent(in.Content)
	if err != nil {
		return nil, err
	}
	if err := s.tweetRepo.UpdateContent(ctx, tweet, content); err != nil {
		return nil, err
	}
	return s.tweetRepo.GetByID(ctx, tweet.ID)
}

// DeleteTweet removes the tweet and returns it as it was.
func (s *TweetService) DeleteTweet(ctx context.Context, userID, tweetID uint) (*models.Tweet, error) {
	tweet, err := s.ownedTweet(ctx, userID, tweetID)
	if err != nil {
		return nil, err
	}
	if err := s.tweetRepo.Delete(ctx, tweet.ID); err != nil {
		return nil, err
	}
	cache.InvalidateChannelStats(ctx, tweet.OwnerID)
	return tweet, nil
}

func (s *TweetService) ownedTweet(ctx context.Context, userID, tweetID uint) (*models.Tweet, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if tweet.OwnerID != userID {
		return nil, models.NewForbiddenError(errNotAuthorized)
	}
	return tweet, nil
}
