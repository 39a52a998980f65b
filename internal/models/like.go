package models

import "time"

// LikeTarget names the kind of resource a like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Column returns the likes column holding the target reference.
func (t LikeTarget) Column() string {
	switch t {
	case LikeTargetVideo:
		return "video_id"
	case LikeTargetComment:
		return "comment_id"
	case LikeTargetTweet:
		return "tweet_id"
	}
	return ""
}

// Like is a join row between a user and exactly one of video, comment or tweet.
// Existence means "liked".
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LikedByID uint      `gorm:"not null;uniqueIndex:idx_like_video;uniqueIndex:idx_like_comment;uniqueIndex:idx_like_tweet" json:"likedBy"`
	VideoID   *uint     `gorm:"uniqueIndex:idx_like_video" json:"videoId,omitempty"`
	CommentID *uint     `gorm:"uniqueIndex:idx_like_comment" json:"commentId,omitempty"`
	TweetID   *uint     `gorm:"uniqueIndex:idx_like_tweet" json:"tweetId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Video   *Video   `gorm:"-" json:"video,omitempty"`
	Comment *Comment `gorm:"-" json:"comment,omitempty"`
	Tweet   *Tweet   `gorm:"-" json:"tweet,omitempty"`
}

// NewLike builds a like row for the given target.
func NewLike(userID uint, target LikeTarget, targetID uint) *Like {
	l := &Like{LikedByID: userID}
	id := targetID
	switch target {
	case LikeTargetVideo:
		l.VideoID = &id
	case LikeTargetComment:
		l.CommentID = &id
	case LikeTargetTweet:
		l.TweetID = &id
	}
	return l
}
