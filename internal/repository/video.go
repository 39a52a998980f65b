package repository

import (
	"context"

	"vidtube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VideoQuery narrows the published-video listing. Empty fields do not filter.
type VideoQuery struct {
	Page     models.Page
	Query    string
	Tag      string
	OwnerID  uint
	SortBy   string // column name, already validated
	SortDesc bool
}

// VideoRepository defines persistence operations for videos.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uint) (*models.Video, error)
	GetWithOwner(ctx context.Context, id uint) (*models.Video, error)
	List(ctx context.Context, q VideoQuery) ([]*models.Video, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	SetPublished(ctx context.Context, id uint, published bool) error
	RecordView(ctx context.Context, videoID, userID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository returns a new VideoRepository implementation.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, notFoundOr(err, "Video not found")
	}
	return &video, nil
}

func (r *videoRepository) withOwner(ctx context.Context) *gorm.DB {
	return readDB(r.db).WithContext(ctx).
		Table("videos").
		Select("videos.*, " + ownerProjection).
		Joins("JOIN users ON users.id = videos.owner_id")
}

func (r *videoRepository) GetWithOwner(ctx context.Context, id uint) (*models.Video, error) {
	var row videoRow
	if err := r.withOwner(ctx).Where("videos.id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "Video not found")
	}
	return row.toModel(), nil
}

func (r *videoRepository) List(ctx context.Context, q VideoQuery) ([]*models.Video, error) {
	db := r.withOwner(ctx).Where("videos.is_published = ?", true)

	if q.OwnerID != 0 {
		db = db.Where("videos.owner_id = ?", q.OwnerID)
	}
	if q.Query != "" {
		db = r.matchText(db, q.Query)
	}
	if q.Tag != "" {
		db = r.matchTag(db, q.Tag)
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}

	var rows []videoRow
	err := db.
		Order(clause.OrderByColumn{Column: clause.Column{Table: "videos", Name: sortBy}, Desc: q.SortDesc}).
		Order("videos.id DESC").
		Offset(q.Page.Offset()).
		Limit(q.Page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return videoRowsToModels(rows), nil
}

// matchText uses the postgres full-text index and falls back to a substring
// match on other dialects.
func (r *videoRepository) matchText(db *gorm.DB, query string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return db.Where(
			"to_tsvector('english', videos.title || ' ' || videos.description) @@ plainto_tsquery('english', ?)",
			query,
		)
	}
	like := containsPattern(query)
	return db.Where(`(LOWER(videos.title) LIKE ? ESCAPE '\' OR LOWER(videos.description) LIKE ? ESCAPE '\')`, like, like)
}

// matchTag keeps videos with at least one tag containing tag. Tags are a JSON
// array, so each element is matched on its own.
func (r *videoRepository) matchTag(db *gorm.DB, tag string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return db.Where(`EXISTS (
			SELECT 1 FROM jsonb_array_elements_text(
				CASE WHEN jsonb_typeof(COALESCE(NULLIF(videos.tags, ''), '[]')::jsonb) = 'array'
				THEN COALESCE(NULLIF(videos.tags, ''), '[]')::jsonb ELSE '[]'::jsonb END
			) AS t(tag)
			WHERE LOWER(t.tag) LIKE ? ESCAPE '\')`, containsPattern(tag))
	}
	return db.Where(`EXISTS (
		SELECT 1 FROM json_each(NULLIF(videos.tags, '')) AS t
		WHERE t.type = 'text' AND LOWER(t.value) LIKE ? ESCAPE '\')`, containsPattern(tag))
}

func (r *videoRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Video, error) {
	var videos []*models.Video
	err := readDB(r.db).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&videos).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return videos, nil
}

// Update writes the editable fields only. Counters such as views are owned by
// RecordView and never written back from a stale copy.
func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	res := r.db.WithContext(ctx).Model(video).
		Select("title", "description", "tags", "thumbnail", "updated_at").
		Updates(video)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video not found")
	}
	return nil
}

func (r *videoRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		Update("is_published", published)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video not found")
	}
	return nil
}

// RecordView appends a watch-history entry and recomputes the stored view
// count as the number of distinct viewers. The recount always overwrites, so
// a lost race between two viewers converges on the next view.
func (r *videoRepository) RecordView(ctx context.Context, videoID, userID uint) (int64, error) {
	db := r.db.WithContext(ctx)

	if err := db.Create(&models.WatchHistory{UserID: userID, VideoID: videoID}).Error; err != nil {
		return 0, models.NewInternalError(err)
	}

	views, err := countDistinctViewers(db, videoID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}

	if err := db.Model(&models.Video{}).Where("id = ?", videoID).Update("views", views).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return views, nil
}

func countDistinctViewers(db *gorm.DB, videoID uint) (int64, error) {
	pairs := db.Table("watch_histories").
		Select("video_id, user_id").
		Where("video_id = ?", videoID).
		Group("video_id, user_id")

	var counts []struct {
		VideoID uint
		Views   int64
	}
	if err := db.Table("(?) AS viewers", pairs).
		Select("video_id, COUNT(*) AS views").
		Group("video_id").
		Scan(&counts).Error; err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0].Views, nil
}

// Delete removes the video together with everything that references it.
func (r *videoRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Video{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Video not found")
		}

		comments := tx.Model(&models.Comment{}).Select("id").Where("video_id = ?", id)
		if err := tx.Where("comment_id IN (?)", comments).Delete(&models.Like{}).Error; err != nil {
			return models.NewInternalError(err)
		}

		for _, model := range []any{
			&models.Like{},
			&models.Comment{},
			&models.WatchHistory{},
			&models.PlaylistVideo{},
		} {
			if err := tx.Where("video_id = ?", id).Delete(model).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
}
