package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetChannelStats handles GET /api/v1/dashboard/stats
// @Summary Creator dashboard totals
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.ChannelStats}
// @Router /dashboard/stats [get]
func (s *Server) GetChannelStats(c *fiber.Ctx) error {
	stats, err := s.dashboardService.ChannelStats(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return models.OK(c, stats, "Channel stats retrieved successfully")
}

// GetChannelVideos handles GET /api/v1/dashboard/videos
// @Summary Every video of the caller, drafts included
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.Video}
// @Failure 404 {object} models.APIResponse
// @Router /dashboard/videos [get]
func (s *Server) GetChannelVideos(c *fiber.Ctx) error {
	videos, err := s.dashboardService.ChannelVideos(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return models.OK(c, videos, "Channel videos retrieved successfully")
}
