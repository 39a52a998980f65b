// Package models contains data structures for the application's domain models.
package models

import "time"

// User is an account and, at the same time, a channel other users subscribe to.
// Password and RefreshToken never leave the server.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null;size:254" json:"email"`
	FullName     string    `gorm:"not null;index" json:"fullName"`
	Avatar       string    `gorm:"not null" json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	Password     string    `gorm:"not null" json:"-"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Owner is the public projection of a user joined onto other resources.
type Owner struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// PublicProfile returns the projection exposed on joined reads.
func (u *User) PublicProfile() *Owner {
	if u == nil {
		return nil
	}
	return &Owner{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
}

// WatchHistory is one entry of a user's ordered watch list. A re-watch appends
// another entry; distinct-viewer counting collapses them.
type WatchHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	VideoID   uint      `gorm:"not null;index" json:"videoId"`
	WatchedAt time.Time `gorm:"autoCreateTime" json:"watchedAt"`
}

// ChannelProfile is the channel page view of a user.
type ChannelProfile struct {
	ID                        uint      `json:"id"`
	Username                  string    `json:"username"`
	FullName                  string    `json:"fullName"`
	Email                     string    `json:"email"`
	Avatar                    string    `json:"avatar"`
	CoverImage                string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
	CreatedAt                 time.Time `json:"createdAt"`
}
