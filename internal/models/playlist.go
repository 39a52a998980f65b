package models

import "time"

// Playlist is an ordered set of videos curated by its owner.
type Playlist struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_playlist_owner_name" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	OwnerID     uint      `gorm:"not null;uniqueIndex:idx_playlist_owner_name" json:"ownerId"`
	Videos      []*Video  `gorm:"-" json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistVideo is one membership row; Position keeps insertion order.
type PlaylistVideo struct {
	PlaylistID uint      `gorm:"primaryKey" json:"playlistId"`
	VideoID    uint      `gorm:"primaryKey;index" json:"videoId"`
	Position   int       `gorm:"not null" json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}
