package server

import (
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleSubscription handles POST /api/v1/subscriptions/c/:channelId
// @Summary Subscribe to or unsubscribe from a channel
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param channelId path int true "Channel (user) ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /subscriptions/c/{channelId} [post]
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	channelID, err := parseID(c, "channelId")
	if err != nil {
		return err
	}
	subscribed, err := s.subscriptionService.ToggleSubscription(c.UserContext(), currentUserID(c), channelID)
	if err != nil {
		return err
	}
	if subscribed {
		return models.OK(c, nil, "Subscribed successfully")
	}
	return models.OK(c, nil, "Unsubscribed successfully")
}

// GetChannelSubscribers handles GET /api/v1/subscriptions/c/:channelId
// @Summary Subscribers of a channel
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param channelId path int true "Channel (user) ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.Subscription}
// @Failure 404 {object} models.APIResponse
// @Router /subscriptions/c/{channelId} [get]
func (s *Server) GetChannelSubscribers(c *fiber.Ctx) error {
	channelID, err := parseID(c, "channelId")
	if err != nil {
		return err
	}
	page, limit := queryPage(c)

	subs, err := s.subscriptionService.ChannelSubscribers(c.UserContext(), service.ListSubscriptionsInput{
		UserID: channelID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return models.OK(c, subs, "Subscribers retrieved successfully")
}

// GetSubscribedChannels handles GET /api/v1/subscriptions/u/:subscriberId
// @Summary Channels a user subscribes to
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param subscriberId path int true "Subscriber (user) ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=[]models.Subscription}
// @Failure 404 {object} models.APIResponse
// @Router /subscriptions/u/{subscriberId} [get]
func (s *Server) GetSubscribedChannels(c *fiber.Ctx) error {
	subscriberID, err := parseID(c, "subscriberId")
	if err != nil {
		return err
	}
	page, limit := queryPage(c)

	subs, err := s.subscriptionService.SubscribedChannels(c.UserContext(), service.ListSubscriptionsInput{
		UserID: subscriberID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return models.OK(c, subs, "Subscriptions retrieved successfully")
}
