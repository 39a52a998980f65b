package repository

import (
	"context"
	"time"

	"vidtube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository defines persistence operations for playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uint) (*models.Playlist, error)
	// GetWithVideos loads the playlist and its videos in insertion order.
	GetWithVideos(ctx context.Context, id uint) (*models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*models.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID uint) error
	RemoveVideo(ctx context.Context, playlistID, videoID uint) (bool, error)
	Update(ctx context.Context, playlist *models.Playlist) error
	Delete(ctx context.Context, id uint) error
}

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository returns a new PlaylistRepository implementation.
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

type playlistVideoRow struct {
	models.Video
	OwnerColumns
	PlaylistID uint
}

func (r *playlistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Playlist already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *playlistRepository) GetByID(ctx context.Context, id uint) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).First(&playlist, id).Error; err != nil {
		return nil, notFoundOr(err, "Playlist not found")
	}
	return &playlist, nil
}

func (r *playlistRepository) GetWithVideos(ctx context.Context, id uint) (*models.Playlist, error) {
	playlist, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.attachVideos(ctx, []*models.Playlist{playlist}); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (r *playlistRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Playlist, error) {
	var playlists []*models.Playlist
	if err := readDB(r.db).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&playlists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.attachVideos(ctx, playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (r *playlistRepository) attachVideos(ctx context.Context, playlists []*models.Playlist) error {
	if len(playlists) == 0 {
		return nil
	}
	byID := make(map[uint]*models.Playlist, len(playlists))
	ids := make([]uint, 0, len(playlists))
	for _, p := range playlists {
		p.Videos = []*models.Video{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	var rows []playlistVideoRow
	err := readDB(r.db).WithContext(ctx).
		Table("playlist_videos").
		Select("videos.*, "+ownerProjection+", playlist_videos.playlist_id AS playlist_id").
		Joins("JOIN videos ON videos.id = playlist_videos.video_id").
		Joins("JOIN users ON users.id = videos.owner_id").
		Where("playlist_videos.playlist_id IN ?", ids).
		Order("playlist_videos.position ASC").
		Find(&rows).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	for _, row := range rows {
		v := row.Video
		v.Owner = row.owner(v.OwnerID)
		if p, ok := byID[row.PlaylistID]; ok {
			p.Videos = append(p.Videos, &v)
		}
	}
	return nil
}

// AddVideo appends the video at the end of the playlist. Adding a video that is
// already present is a no-op.
func (r *playlistRepository) AddVideo(ctx context.Context, playlistID, videoID uint) error {
	db := r.db.WithContext(ctx)

	var last struct{ Position int }
	if err := db.Model(&models.PlaylistVideo{}).
		Select("COALESCE(MAX(position), 0) AS position").
		Where("playlist_id = ?", playlistID).
		Scan(&last).Error; err != nil {
		return models.NewInternalError(err)
	}

	entry := &models.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID, Position: last.Position + 1}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := db.Model(&models.Playlist{}).Where("id = ?", playlistID).Update("updated_at", time.Now()).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&models.PlaylistVideo{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *playlistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	err := r.db.WithContext(ctx).Model(playlist).
		Updates(map[string]any{"name": playlist.Name, "description": playlist.Description}).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Playlist already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *playlistRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Delete(&models.Playlist{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Playlist not found")
		}
		return nil
	})
}
