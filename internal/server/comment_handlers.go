package server

import (
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetVideoComments handles GET /api/v1/comments/:videoId
// @Summary List comments of a video
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.Comment}
// @Failure 404 {object} models.APIResponse
// @Router /comments/{videoId} [get]
func (s *Server) GetVideoComments(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}
	page, limit := queryPage(c)

	comments, err := s.commentService.ListComments(c.UserContext(), service.ListCommentsInput{
		VideoID: videoID,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return err
	}
	return models.OK(c, comments, "Comments retrieved successfully")
}

// CreateComment handles POST /api/v1/comments/:videoId
// @Summary Comment on a video
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.APIResponse{data=models.Comment}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /comments/{videoId} [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return err
	}

	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  currentUserID(c),
		VideoID: videoID,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return models.Created(c, comment, "Comment created successfully")
}

// UpdateComment handles PATCH /api/v1/comments/c/:commentId
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Param request body object{newContent=string} true "New content"
// @Success 200 {object} models.APIResponse{data=models.Comment}
// @Failure 403 {object} models.APIResponse
// @Router /comments/c/{commentId} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}

	var req struct {
		NewContent string `json:"newContent" form:"newContent"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
		Content:   req.NewContent,
	})
	if err != nil {
		return err
	}
	return models.OK(c, comment, "Comment updated successfully")
}

// DeleteComment handles DELETE /api/v1/comments/c/:commentId
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /comments/c/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}
	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), commentID); err != nil {
		return err
	}
	return models.OK(c, fiber.Map{}, "Comment deleted successfully")
}
