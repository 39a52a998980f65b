package server

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

type likeToggleFunc func(ctx context.Context, userID, targetID uint) (*service.LikeResult, error)

// respondToggle replies 201 "Liked" or 200 "Unliked" with the new total.
func (s *Server) respondToggle(c *fiber.Ctx, param string, toggle likeToggleFunc) error {
	targetID, err := parseID(c, param)
	if err != nil {
		return err
	}
	res, err := toggle(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return err
	}

	data := fiber.Map{"totalLikes": res.TotalLikes}
	if res.Liked {
		return models.Created(c, data, "Liked")
	}
	return models.OK(c, data, "Unliked")
}

// ToggleVideoLike handles POST /api/v1/likes/toggle/v/:videoId
// @Summary Like or unlike a video
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse
// @Success 201 {object} models.APIResponse
// @Router /likes/toggle/v/{videoId} [post]
func (s *Server) ToggleVideoLike(c *fiber.Ctx) error {
	return s.respondToggle(c, "videoId", s.likeService.ToggleVideoLike)
}

// ToggleCommentLike handles POST /api/v1/likes/toggle/c/:commentId
// @Summary Like or unlike a comment
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.APIResponse
// @Success 201 {object} models.APIResponse
// @Router /likes/toggle/c/{commentId} [post]
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	return s.respondToggle(c, "commentId", s.likeService.ToggleCommentLike)
}

// ToggleTweetLike handles POST /api/v1/likes/toggle/t/:tweetId
// @Summary Like or unlike a tweet
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param tweetId path int true "Tweet ID"
// @Success 200 {object} models.APIResponse
// @Success 201 {object} models.APIResponse
// @Router /likes/toggle/t/{tweetId} [post]
func (s *Server) ToggleTweetLike(c *fiber.Ctx) error {
	return s.respondToggle(c, "tweetId", s.likeService.ToggleTweetLike)
}

// GetLikedVideos handles GET /api/v1/likes/videos
// @Summary Videos the caller liked
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.Like}
// @Failure 404 {object} models.APIResponse
// @Router /likes/videos [get]
func (s *Server) GetLikedVideos(c *fiber.Ctx) error {
	likes, err := s.likeService.LikedVideos(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return models.OK(c, likes, "Liked videos")
}

// GetLikedComments handles GET /api/v1/likes/comments
// @Summary Comments the caller liked
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.Like}
// @Failure 404 {object} models.APIResponse
// @Router /likes/comments [get]
func (s *Server) GetLikedComments(c *fiber.Ctx) error {
	likes, err := s.likeService.LikedComments(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return models.OK(c, likes, "Liked comments")
}

// GetLikedTweets handles GET /api/v1/likes/tweets
// @Summary Tweets the caller liked
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.Like}
// @Failure 404 {object} models.APIResponse
// @Router /likes/tweets [get]
func (s *Server) GetLikedTweets(c *fiber.Ctx) error {
	likes, err := s.likeService.LikedTweets(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return models.OK(c, likes, "Liked tweets")
}
