package models

import "time"

// Subscription links a subscriber to a channel; both are users.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscriber_channel" json:"subscriberId"`
	ChannelID    uint      `gorm:"not null;uniqueIndex:idx_subscriber_channel;index" json:"channelId"`
	Subscriber   *Owner    `gorm:"-" json:"subscriber,omitempty"`
	Channel      *Owner    `gorm:"-" json:"channel,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
