package repository

import (
	"context"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository computes creator statistics.
type DashboardRepository interface {
	VideoStats(ctx context.Context, ownerID uint) (models.VideoStats, error)
	TweetStats(ctx context.Context, ownerID uint) (models.TweetStats, error)
	SubscriberCount(ctx context.Context, channelID uint) (int64, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository returns a new DashboardRepository implementation.
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) VideoStats(ctx context.Context, ownerID uint) (models.VideoStats, error) {
	db := readDB(r.db).WithContext(ctx)

	perVideo := db.Table("videos").
		Select(`videos.id, videos.views,
			(SELECT COUNT(*) FROM likes WHERE likes.video_id = videos.id) AS like_count,
			(SELECT COUNT(*) FROM comments WHERE comments.video_id = videos.id) AS comment_count`).
		Where("videos.owner_id = ?", ownerID)

	var stats models.VideoStats
	err := db.Table("(?) AS per_video", perVideo).
		Select(`COUNT(*) AS total_videos,
			CAST(COALESCE(SUM(views), 0) AS BIGINT) AS total_views,
			CAST(COALESCE(SUM(like_count), 0) AS BIGINT) AS total_likes,
			CAST(COALESCE(SUM(comment_count), 0) AS BIGINT) AS total_comments`).
		Scan(&stats).Error
	if err != nil {
		return models.VideoStats{}, models.NewInternalError(err)
	}
	return stats, nil
}

func (r *dashboardRepository) TweetStats(ctx context.Context, ownerID uint) (models.TweetStats, error) {
	db := readDB(r.db).WithContext(ctx)

	perTweet := db.Table("tweets").
		Select("tweets.id, (SELECT COUNT(*) FROM likes WHERE likes.tweet_id = tweets.id) AS like_count").
		Where("tweets.owner_id = ?", ownerID)

	var stats models.TweetStats
	err := db.Table("(?) AS per_tweet", perTweet).
		Select("COUNT(*) AS total_tweets, CAST(COALESCE(SUM(like_count), 0) AS BIGINT) AS total_likes").
		Scan(&stats).Error
	if err != nil {
		return models.TweetStats{}, models.NewInternalError(err)
	}
	return stats, nil
}

func (r *dashboardRepository) SubscriberCount(ctx context.Context, channelID uint) (int64, error) {
	var total int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&total).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}
