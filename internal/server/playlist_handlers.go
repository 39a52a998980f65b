package server

import (
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

type playlistRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// CreatePlaylist handles POST /api/v1/playlists
// @Summary Create a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body playlistRequest true "Playlist"
// @Success 201 {object} models.APIResponse{data=models.Playlist}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /playlists [post]
func (s *Server) CreatePlaylist(c *fiber.Ctx) error {
	var req playlistRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	playlist, err := s.playlistService.CreatePlaylist(c.UserContext(), service.CreatePlaylistInput{
		UserID:      currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return models.Created(c, playlist, "Playlist created successfully")
}

// GetUserPlaylists handles GET /api/v1/playlists/user/:userId
// @Summary Playlists of a user
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} models.APIResponse{data=[]models.Playlist}
// @Failure 404 {object} models.APIResponse
// @Router /playlists/user/{userId} [get]
func (s *Server) GetUserPlaylists(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	playlists, err := s.playlistService.UserPlaylists(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return models.OK(c, playlists, "Playlists retrieved successfully")
}

// GetPlaylist handles GET /api/v1/playlists/:playlistId
// @Summary Get a playlist with its videos
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse{data=models.Playlist}
// @Failure 404 {object} models.APIResponse
// @Router /playlists/{playlistId} [get]
func (s *Server) GetPlaylist(c *fiber.Ctx) error {
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.GetPlaylist(c.UserContext(), playlistID)
	if err != nil {
		return err
	}
	return models.OK(c, playlist, "Playlist retrieved successfully")
}

// AddVideoToPlaylist handles PATCH /api/v1/playlists/add/:videoId/:playlistId
// @Summary Add a video to a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse{data=models.Playlist}
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /playlists/add/{videoId}/{playlistId} [patch]
func (s *Server) AddVideoToPlaylist(c *fiber.Ctx) error {
	in, err := playlistVideoInput(c)
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.AddVideo(c.UserContext(), in)
	if err != nil {
		return err
	}
	return models.OK(c, playlist, "Video added to playlist successfully")
}

// RemoveVideoFromPlaylist handles PATCH /api/v1/playlists/remove/:videoId/:playlistId
// @Summary Remove a video from a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse{data=models.Playlist}
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /playlists/remove/{videoId}/{playlistId} [patch]
func (s *Server) RemoveVideoFromPlaylist(c *fiber.Ctx) error {
	in, err := playlistVideoInput(c)
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.RemoveVideo(c.UserContext(), in)
	if err != nil {
		return err
	}
	return models.OK(c, playlist, "Video removed from playlist successfully")
}

func playlistVideoInput(c *fiber.Ctx) (service.PlaylistVideoInput, error) {
	videoID, err := parseID(c, "videoId")
	if err != nil {
		return service.PlaylistVideoInput{}, err
	}
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return service.PlaylistVideoInput{}, err
	}
	return service.PlaylistVideoInput{
		UserID:     currentUserID(c),
		PlaylistID: playlistID,
		VideoID:    videoID,
	}, nil
}

// UpdatePlaylist handles PATCH /api/v1/playlists/:playlistId
// @Summary Rename or describe a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param playlistId path int true "Playlist ID"
// @Param request body playlistRequest true "Changes"
// @Success 200 {object} models.APIResponse{data=models.Playlist}
// @Failure 403 {object} models.APIResponse
// @Router /playlists/{playlistId} [patch]
func (s *Server) UpdatePlaylist(c *fiber.Ctx) error {
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return err
	}

	var req playlistRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	playlist, err := s.playlistService.UpdatePlaylist(c.UserContext(), service.UpdatePlaylistInput{
		UserID:      currentUserID(c),
		PlaylistID:  playlistID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return models.OK(c, playlist, "Playlist updated successfully")
}

// DeletePlaylist handles DELETE /api/v1/playlists/:playlistId
// @Summary Delete a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /playlists/{playlistId} [delete]
func (s *Server) DeletePlaylist(c *fiber.Ctx) error {
	playlistID, err := parseID(c, "playlistId")
	if err != nil {
		return err
	}
	if err := s.playlistService.DeletePlaylist(c.UserContext(), currentUserID(c), playlistID); err != nil {
		return err
	}
	return models.OK(c, fiber.Map{}, "Playlist deleted successfully")
}
