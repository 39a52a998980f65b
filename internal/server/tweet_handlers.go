package server

import (
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTweet handles POST /api/v1/tweets
// @Summary Post a tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{content=string} true "Tweet"
// @Success 201 {object} models.APIResponse{data=models.Tweet}
// @Failure 400 {object} models.APIResponse
// @Router /tweets [post]
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	tweet, err := s.tweetService.CreateTweet(c.UserContext(), service.CreateTweetInput{
		UserID:  currentUserID(c),
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return models.Created(c, tweet, "Tweet created successfully")
}

// GetUserTweets handles GET /api/v1/tweets/user/:username
// @Summary Tweets of a user
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} models.APIResponse{data=[]models.Tweet}
// @Failure 404 {object} models.APIResponse
// @Router /tweets/user/{username} [get]
func (s *Server) GetUserTweets(c *fiber.Ctx) error {
	tweets, err := s.tweetService.UserTweets(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return models.OK(c, tweets, "Tweets retrieved successfully")
}

// UpdateTweet handles PATCH /api/v1/tweets/:tweetId
// @Summary Edit a tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tweetId path int true "Tweet ID"
// @Param request body object{newContent=string} true "New content"
// @Success 200 {object} models.APIResponse{data=models.Tweet}
// @Failure 403 {object} models.APIResponse
// @Router /tweets/{tweetId} [patch]
func (s *Server) UpdateTweet(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "tweetId")
	if err != nil {
		return err
	}

	var req struct {
		NewContent string `json:"newContent" form:"newContent"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	tweet, err := s.tweetService.UpdateTweet(c.UserContext(), service.UpdateTweetInput{
		UserID:  currentUserID(c),
		TweetID: tweetID,
		Content: req.NewContent,
	})
	if err != nil {
		return err
	}
	return models.OK(c, tweet, "Tweet updated successfully")
}

// DeleteTweet handles DELETE /api/v1/tweets/:tweetId
// @Summary Delete a tweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param tweetId path int true "Tweet ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /tweets/{tweetId} [delete]
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "tweetId")
	if err != nil {
		return err
	}
	tweet, err := s.tweetService.DeleteTweet(c.UserContext(), currentUserID(c), tweetID)
	if err != nil {
		return err
	}
	return models.OK(c, fiber.Map{"deletedTweet": tweet}, "Tweet deleted successfully")
}
