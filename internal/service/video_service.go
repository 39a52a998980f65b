package service

import (
	"context"
	"math"
	"strings"

	"vidtube/internal/cache"
	"vidtube/internal/media"
	"vidtube/internal/models"
	"vidtube/internal/observability"
	"vidtube/internal/repository"
	"vidtube/internal/validation"
)

const errNotVideoOwner = "You are not allowed to perform this action"

type VideoService struct {
	videoRepo repository.VideoRepository
	media     MediaStore
}

type ListVideosInput struct {
	Page     int
	Limit    int
	Query    string
	Tag      string
	SortBy   string
	SortType string
	OwnerID  uint
}

type PublishVideoInput struct {
	OwnerID       uint
	Title         string
	Description   string
	Tags          string
	Duration      float64
	VideoPath     string
	ThumbnailPath string
}

// UpdateVideoInput carries optional changes; nil fields are left alone.
type UpdateVideoInput struct {
	UserID        uint
	VideoID       uint
	Title         *string
	Description   *string
	Tags          *string
	ThumbnailPath string
}

func NewVideoService(videoRepo repository.VideoRepository, mediaStore MediaStore) *VideoService {
	return &VideoService{videoRepo: videoRepo, media: mediaStore}
}

func (s *VideoService) ListVideos(ctx context.Context, in ListVideosInput) ([]*models.Video, error) {
	sortBy := in.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	column, ok := models.VideoSortColumns[sortBy]
	if !ok {
		return nil, models.NewValidationError("Invalid sortBy field")
	}

	videos, err := s.videoRepo.List(ctx, repository.VideoQuery{
		Page:     models.NewPage(in.Page, in.Limit),
		Query:    strings.TrimSpace(in.Query),
		Tag:      strings.TrimSpace(in.Tag),
		OwnerID:  in.OwnerID,
		SortBy:   column,
		SortDesc: !strings.EqualFold(in.SortType, "asc"),
	})
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, models.NewNotFoundError("No videos found based on the query parameters")
	}
	return videos, nil
}

func (s *VideoService) PublishVideo(ctx context.Context, in PublishVideoInput) (*models.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, models.NewValidationError("Title and description are required")
	}
	if err := validation.ValidateTitle(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tags, err := validation.ParseTags(in.Tags)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.VideoPath == "" || in.ThumbnailPath == "" {
		return nil, models.NewValidationError("Video file and thumbnail are required")
	}
	if math.IsNaN(in.Duration) || math.IsInf(in.Duration, 0) {
		return nil, models.NewValidationError("Duration must be a number of seconds")
	}
	if in.Duration < 0 {
		return nil, models.NewValidationError("Duration must not be negative")
	}

	const uploadFailed = "An error occurred while uploading the video file or thumbnail"
	videoAsset, err := s.media.Store(ctx, media.Upload{Path: in.VideoPath, Kind: media.KindVideo, Duration: in.Duration})
	if err != nil {
		return nil, models.NewInternalErrorMsg(uploadFailed, err)
	}
	thumbAsset, err := s.media.Store(ctx, media.Upload{Path: in.ThumbnailPath, Kind: media.KindImage})
	if err != nil {
		s.media.Remove(ctx, videoAsset.URL)
		return nil, models.NewInternalErrorMsg(uploadFailed, err)
	}

	video := &models.Video{
		Title:       title,
		Description: description,
		Tags:        tags,
		VideoFile:   videoAsset.URL,
		Thumbnail:   thumbAsset.URL,
		Duration:    videoAsset.Duration,
		IsPublished: true,
		OwnerID:     in.OwnerID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		s.media.Remove(ctx, videoAsset.URL)
		s.media.Remove(ctx, thumbAsset.URL)
		return nil, models.NewInternalErrorMsg("An error occurred while creating the video", err)
	}

	observability.VideosPublished.Inc()
	cache.InvalidateChannelStats(ctx, in.OwnerID)
	return s.videoRepo.GetWithOwner(ctx, video.ID)
}

// GetVideo returns a published video, or an unpublished one to its owner.
func (s *VideoService) GetVideo(ctx context.Context, viewerID, videoID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetWithOwner(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, models.NewForbiddenError("Video is not published")
	}
	return video, nil
}

// ViewVideo records a view by viewerID and returns the video with its new view count.
func (s *VideoService) ViewVideo(ctx context.Context, viewerID, videoID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetWithOwner(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished {
		return nil, models.NewForbiddenError("Video is not published")
	}

	views, err := s.videoRepo.RecordView(ctx, videoID, viewerID)
	if err != nil {
		return nil, models.NewInternalErrorMsg("An error occurred while calculating unique views", err)
	}
	observability.ViewsRecorded.Inc()
	video.Views = views
	return video, nil
}

func (s *VideoService) UpdateVideo(ctx context.Context, in UpdateVideoInput) (*models.Video, error) {
	video, err := s.ownedVideo(ctx, in.UserID, in.VideoID)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		title := strings.TrimSpace(*in.Title)
		if err := validation.ValidateTitle(title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		video.Title = title
		changed = true
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		video.Description = strings.TrimSpace(*in.Description)
		changed = true
	}
	if in.Tags != nil && strings.TrimSpace(*in.Tags) != "" {
		tags, err := validation.ParseTags(*in.Tags)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		video.Tags = tags
		changed = true
	}
	if !changed && in.ThumbnailPath == "" {
		return nil, models.NewValidationError("At least one field is required to update the video")
	}

	oldThumbnail := ""
	if in.ThumbnailPath != "" {
		asset, err := s.media.Store(ctx, media.Upload{Path: in.ThumbnailPath, Kind: media.KindImage})
		if err != nil {
			return nil, models.NewInternalErrorMsg("An error occurred while uploading the thumbnail", err)
		}
		oldThumbnail = video.Thumbnail
		video.Thumbnail = asset.URL
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		if oldThumbnail != "" {
			s.media.Remove(ctx, video.Thumbnail)
		}
		return nil, models.NewInternalErrorMsg("An error occurred while updating the video", err)
	}
	if oldThumbnail != "" {
		s.media.Remove(ctx, oldThumbnail)
	}
	return s.videoRepo.GetWithOwner(ctx, video.ID)
}

// DeleteVideo removes the video and its dependent rows, then its media.
func (s *VideoService) DeleteVideo(ctx context.Context, userID, videoID uint) error {
	video, err := s.ownedVideo(ctx, userID, videoID)
	if err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, video.ID); err != nil {
		return err
	}
	s.media.Remove(ctx, video.VideoFile)
	s.media.Remove(ctx, video.Thumbnail)
	cache.InvalidateChannelStats(ctx, userID)
	return nil
}

func (s *VideoService) TogglePublishStatus(ctx context.Context, userID, videoID uint) (*models.Video, error) {
	video, err := s.ownedVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.videoRepo.SetPublished(ctx, video.ID, !video.IsPublished); err != nil {
		return nil, err
	}
	return s.videoRepo.GetWithOwner(ctx, video.ID)
}

func (s *VideoService) ownedVideo(ctx context.Context, userID, videoID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.OwnerID != userID {
		return nil, models.NewForbiddenError(errNotVideoOwner)
	}
	return video, nil
}
