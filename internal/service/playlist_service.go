package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"
)

type PlaylistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
}

type CreatePlaylistInput struct {
	UserID      uint
	Name        string
	Description string
}

type UpdatePlaylistInput struct {
	UserID      uint
	PlaylistID  uint
	Name        string
	Description string
}

type PlaylistVideoInput struct {
	UserID     uint
	PlaylistID uint
	VideoID    uint
}

func NewPlaylistService(playlistRepo repository.PlaylistRepository, videoRepo repository.VideoRepository) *PlaylistService {
	return &PlaylistService{playlistRepo: playlistRepo, videoRepo: videoRepo}
}

func (s *PlaylistService) CreatePlaylist(ctx context.Context, in CreatePlaylistInput) (*models.Playlist, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" || description == "" {
		return nil, models.NewValidationError("Name and description are required")
	}

	playlist := &models.Playlist{
		Name:        name,
		Description: description,
		OwnerID:     in.UserID,
		Videos:      []*models.Video{},
	}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) UserPlaylists(ctx context.Context, userID uint) ([]*models.Playlist, error) {
	playlists, err := s.playlistRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, models.NewNotFoundError("No playlists found")
	}
	return playlists, nil
}

func (s *PlaylistService) GetPlaylist(ctx context.Context, playlistID uint) (*models.Playlist, error) {
	return s.playlistRepo.GetWithVideos(ctx, playlistID)
}

// AddVideo appends a video to one of the caller's playlists; re-adding is a no-op.
func (s *PlaylistService) AddVideo(ctx context.Context, in PlaylistVideoInput) (*models.Playlist, error) {
	playlist, err := s.ownedPlaylist(ctx, in.UserID, in.PlaylistID)
	if err != nil {
		return nil, err
	}
	if _, err := s.videoRepo.GetByID(ctx, in.VideoID); err != nil {
		return nil, err
	}
	if err := s.playlistRepo.AddVideo(ctx, playlist.ID, in.VideoID); err != nil {
		return nil, err
	}
	return s.playlistRepo.GetWithVideos(ctx, playlist.ID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, in PlaylistVideoInput) (*models.Playlist, error) {
	playlist, err := s.ownedPlaylist(ctx, in.UserID, in.PlaylistID)
	if err != nil {
		return nil, err
	}
	removed, err := s.playlistRepo.RemoveVideo(ctx, playlist.ID, in.VideoID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewNotFoundError("Video not found in the playlist")
	}
	return s.playlistRepo.GetWithVideos(ctx, playlist.ID)
}

func (s *PlaylistService) UpdatePlaylist(ctx context.Context, in UpdatePlaylistInput) (*models.Playlist, error) {
	playlist, err := s.ownedPlaylist(ctx, in.UserID, in.PlaylistID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" && description == "" {
		return nil, models.NewValidationError("Name or description is required")
	}
	if name != "" {
		playlist.Name = name
	}
	if description != "" {
		playlist.Description = description
	}
	if err := s.playlistRepo.Update(ctx, playlist); err != nil {
		return nil, err
	}
	return s.playlistRepo.GetWithVideos(ctx, playlist.ID)
}

func (s *PlaylistService) DeletePlaylist(ctx context.Context, userID, playlistID uint) error {
	playlist, err := s.ownedPlaylist(ctx, userID, playlistID)
	if err != nil {
		return err
	}
	return s.playlistRepo.Delete(ctx, playlist.ID)
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, userID, playlistID uint) (*models.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != userID {
		return nil, models.NewForbiddenError(errNotAuthorized)
	}
	return playlist, nil
}
