package server

import (
	"math"
	"strconv"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListVideos handles GET /api/v1/videos
// @Summary Search published videos
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param query query string false "Full-text match on title and description"
// @Param tag query string false "Case-insensitive tag substring"
// @Param sortBy query string false "createdAt, updatedAt, views, duration or title"
// @Param sortType query string false "asc or desc"
// @Param userId query int false "Owner filter"
// @Success 200 {object} models.APIResponse{data=[]models.Video}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /videos [get]
func (s *Server) ListVideos(c *fiber.Ctx) error {
	page, limit := queryPage(c)

	var ownerID uint
	if raw := strings.TrimSpace(c.Query("userId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return models.NewValidationError("Invalid user ID")
		}
		ownerID = uint(id)
	}

	videos, err := s.videoService.ListVideos(c.UserContext(), service.ListVideosInput{
		Page:     page,
		Limit:    limit,
		Query:    c.Query("query"),
		Tag:      c.Query("tag"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		OwnerID:  ownerID,
	})
	if err != nil {
		return err
	}
	return models.OK(c, videos, "Videos fetched successfully")
}

// PublishVideo handles POST /api/v1/videos
// @Summary Publish a video
// @Tags videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param tags formData string false "Comma separated tags"
// @Param duration formData number false "Length in seconds"
// @Param videoFile formData file true "Video file"
// @Param thumbnail formData file true "Thumbnail image"
// @Success 201 {object} models.APIResponse{data=models.Video}
// @Failure 400 {object} models.APIResponse
// @Router /videos [post]
func (s *Server) PublishVideo(c *fiber.Ctx) error {
	uploads := &stagedUploads{}
	defer uploads.cleanup()

	var duration float64
	if raw := strings.TrimSpace(c.FormValue("duration")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
			return models.NewValidationError("Duration must be a number of seconds")
		}
		duration = d
	}

	videoPath, err := s.stage(c, uploads, "videoFile")
	if err != nil {
		return err
	}
	thumbnailPath, err := s.stage(c, uploads, "thumbnail")
	if err != nil {
		return err
	}

	video, err := s.videoService.PublishVideo(c.UserContext(), service.PublishVideoInput{
		OwnerID:       currentUserID(c),
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		Tags:          c.FormValue("tags"),
		Duration:      duration,
		VideoPath:     videoPath,
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		return err
	}
	return models.Created(c, video, "Video published successfully")
}

// GetVideo handles GET /api/v1/videos/:videoId
// @Summary Get a video
// @Description Unpublished videos are visible to their owner only
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse{data=models.Video}
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /videos/{videoId} [get]
func (s *Server) GetVideo(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	video, err := s.videoService.GetVideo(c.UserContext(), currentUserID(c), videoID)
	if err != nil {
		return err
	}
	return models.OK(c, video, "Video fetched successfully")
}

// ViewVideo handles PATCH /api/v1/videos/view/:videoId
// @Summary Record a view
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse{data=models.Video}
// @Router /videos/view/{videoId} [patch]
func (s *Server) ViewVideo(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	video, err := s.videoService.ViewVideo(c.UserContext(), currentUserID(c), videoID)
	if err != nil {
		return err
	}
	return models.OK(c, video, "Video viewed successfully")
}

// UpdateVideo handles PATCH /api/v1/videos/:videoId
// @Summary Update a video
// @Tags videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param tags formData string false "Comma separated tags"
// @Param thumbnail formData file false "Thumbnail image"
// @Success 200 {object} models.APIResponse{data=models.Video}
// @Failure 403 {object} models.APIResponse
// @Router /videos/{videoId} [patch]
func (s *Server) UpdateVideo(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}

	uploads := &stagedUploads{}
	defer uploads.cleanup()

	thumbnailPath, err := s.stage(c, uploads, "thumbnail")
	if err != nil {
		return err
	}

	video, err := s.videoService.UpdateVideo(c.UserContext(), service.UpdateVideoInput{
		UserID:        currentUserID(c),
		VideoID:       videoID,
		Title:         optionalString(c, "title"),
		Description:   optionalString(c, "description"),
		Tags:          optionalString(c, "tags"),
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		return err
	}
	return models.OK(c, video, "Video updated successfully")
}

// DeleteVideo handles DELETE /api/v1/videos/:videoId
// @Summary Delete a video
// @Description Removes its comments, likes, watch history entries and playlist entries
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /videos/{videoId} [delete]
func (s *Server) DeleteVideo(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	if err := s.videoService.DeleteVideo(c.UserContext(), currentUserID(c), videoID); err != nil {
		return err
	}
	return models.OK(c, fiber.Map{}, "Video deleted successfully")
}

// TogglePublishStatus handles PATCH /api/v1/videos/toggle-publish-status/:videoId
// @Summary Publish or unpublish a video
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse{data=models.Video}
// @Router /videos/toggle-publish-status/{videoId} [patch]
func (s *Server) TogglePublishStatus(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	video, err := s.videoService.TogglePublishStatus(c.UserContext(), currentUserID(c), videoID)
	if err != nil {
		return err
	}
	return models.OK(c, video, "Video publish status updated successfully")
}
