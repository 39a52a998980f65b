package repository

import (
	"context"
	"errors"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	// Toggle removes the caller's like when present and adds it otherwise.
	// It reports whether the target is liked afterwards.
	Toggle(ctx context.Context, userID uint, target models.LikeTarget, targetID uint) (bool, error)
	Count(ctx context.Context, target models.LikeTarget, targetID uint) (int64, error)
	ListLikedVideos(ctx context.Context, userID uint) ([]*models.Like, error)
	ListLikedComments(ctx context.Context, userID uint) ([]*models.Like, error)
	ListLikedTweets(ctx context.Context, userID uint) ([]*models.Like, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID uint, target models.LikeTarget, targetID uint) (bool, error) {
	column := target.Column()
	if column == "" {
		return false, models.NewValidationError("Unknown like target")
	}
	db := r.db.WithContext(ctx)

	var existing models.Like
	err := db.Where("liked_by_id = ? AND "+column+" = ?", userID, targetID).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Delete(&models.Like{}, existing.ID).Error; err != nil {
			return false, models.NewInternalError(err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(models.NewLike(userID, target, targetID)).Error; err != nil {
			// A concurrent toggle got there first.
			if isUniqueConstraintError(err) {
				return true, nil
			}
			return false, models.NewInternalError(err)
		}
		return true, nil
	default:
		return false, models.NewInternalError(err)
	}
}

func (r *likeRepository) Count(ctx context.Context, target models.LikeTarget, targetID uint) (int64, error) {
	var total int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Like{}).
		Where(target.Column()+" = ?", targetID).
		Count(&total).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *likeRepository) likesOf(ctx context.Context, userID uint, target models.LikeTarget) ([]*models.Like, []uint, error) {
	var likes []*models.Like
	err := readDB(r.db).WithContext(ctx).
		Where("liked_by_id = ? AND "+target.Column()+" IS NOT NULL", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&likes).Error
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(likes))
	for _, l := range likes {
		switch target {
		case models.LikeTargetVideo:
			ids = append(ids, *l.VideoID)
		case models.LikeTargetComment:
			ids = append(ids, *l.CommentID)
		case models.LikeTargetTweet:
			ids = append(ids, *l.TweetID)
		}
	}
	return likes, ids, nil
}

// ListLikedVideos returns the caller's video likes with the video and its owner populated.
func (r *likeRepository) ListLikedVideos(ctx context.Context, userID uint) ([]*models.Like, error) {
	likes, ids, err := r.likesOf(ctx, userID, models.LikeTargetVideo)
	if err != nil || len(likes) == 0 {
		return likes, err
	}

	var rows []videoRow
	if err := readDB(r.db).WithContext(ctx).
		Table("videos").
		Select("videos.*, "+ownerProjection).
		Joins("JOIN users ON users.id = videos.owner_id").
		Where("videos.id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	byID := make(map[uint]*models.Video, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toModel()
	}

	out := likes[:0]
	for _, l := range likes {
		if v, ok := byID[*l.VideoID]; ok {
			l.Video = v
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *likeRepository) ListLikedComments(ctx context.Context, userID uint) ([]*models.Like, error) {
	likes, ids, err := r.likesOf(ctx, userID, models.LikeTargetComment)
	if err != nil || len(likes) == 0 {
		return likes, err
	}

	var comments []*models.Comment
	if err := readDB(r.db).WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	byID := make(map[uint]*models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	out := likes[:0]
	for _, l := range likes {
		if c, ok := byID[*l.CommentID]; ok {
			l.Comment = c
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *likeRepository) ListLikedTweets(ctx context.Context, userID uint) ([]*models.Like, error) {
	likes, ids, err := r.likesOf(ctx, userID, models.LikeTargetTweet)
	if err != nil || len(likes) == 0 {
		return likes, err
	}

	var tweets []*models.Tweet
	if err := readDB(r.db).WithContext(ctx).Where("id IN ?", ids).Find(&tweets).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	byID := make(map[uint]*models.Tweet, len(tweets))
	for _, t := range tweets {
		byID[t.ID] = t
	}

	out := likes[:0]
	for _, l := range likes {
		if t, ok := byID[*l.TweetID]; ok {
			l.Tweet = t
			out = append(out, l)
		}
	}
	return out, nil
}
