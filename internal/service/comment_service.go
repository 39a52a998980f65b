package service

import (
	"context"
	"strings"

	"vidtube/internal/cache"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
	"vidtube/internal/validation"
)

const errNotAuthorized = "You are not authorized to perform this action"

type CommentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	events      EventPublisher
}

type ListCommentsInput struct {
	VideoID uint
	Page    int
	Limit   int
}

type CreateCommentInput struct {
	UserID  uint
	VideoID uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	videoRepo repository.VideoRepository,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		events:      events,
	}
}

// publishedVideo loads a video that comments may be read from or added to.
func (s *CommentService) publishedVideo(ctx context.Context, videoID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewNotFoundError("Video not found or is not published")
		}
		return nil, err
	}
	if !video.IsPublished {
		return nil, models.NewForbiddenError("Video is not published")
	}
	return video, nil
}

func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) ([]*models.Comment, error) {
	if _, err := s.publishedVideo(ctx, in.VideoID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByVideo(ctx, in.VideoID, models.NewPage(in.Page, in.Limit))
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, models.NewNotFoundError("No comments found")
	}
	return comments, nil
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if err := validation.ValidateContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	video, err := s.publishedVideo(ctx, in.VideoID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		VideoID: video.ID,
		OwnerID: in.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalErrorMsg("Comment could not be created", err)
	}
	cache.InvalidateChannelStats(ctx, video.OwnerID)

	notify(ctx, s.events, video.OwnerID, notifications.Event{
		Type:    notifications.EventCommentCreated,
		ActorID: in.UserID,
		Payload: map[string]any{"videoId": video.ID, "commentId": comment.ID},
	})
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.ownedComment(ctx, in.UserID, in.CommentID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if err := validation.ValidateContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.commentRepo.UpdateContent(ctx, comment.ID, content); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.ownedComment(ctx, userID, commentID)
	if err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return err
	}
	if video, err := s.videoRepo.GetByID(ctx, comment.VideoID); err == nil {
		cache.InvalidateChannelStats(ctx, video.OwnerID)
	}
	return nil
}

func (s *CommentService) ownedComment(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.OwnerID != userID {
		return nil, models.NewForbiddenError(errNotAuthorized)
	}
	return comment, nil
}
