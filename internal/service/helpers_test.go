package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vidtube/internal/auth"
	"vidtube/internal/database"
	"vidtube/internal/media"
	"vidtube/internal/models"
	"vidtube/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mediaMock is a testify mock for MediaStore.
type mediaMock struct {
	mock.Mock
}

func (m *mediaMock) Store(ctx context.Context, up media.Upload) (*media.Asset, error) {
	args := m.Called(ctx, up)
	asset, _ := args.Get(0).(*media.Asset)
	return asset, args.Error(1)
}

func (m *mediaMock) Remove(ctx context.Context, url string) {
	m.Called(ctx, url)
}

// fakeMedia stores every upload under a predictable URL.
type fakeMedia struct {
	mu      sync.Mutex
	stored  []string
	removed []string
}

func (f *fakeMedia) Store(_ context.Context, up media.Upload) (*media.Asset, error) {
	if up.Path == "" {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://cdn.example.com/" + up.Path
	f.stored = append(f.stored, url)
	return &media.Asset{URL: url, Key: up.Path, Duration: up.Duration}, nil
}

func (f *fakeMedia) Remove(_ context.Context, url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
}

// eventRecorder collects published notifications.
type eventRecorder struct {
	mu     sync.Mutex
	events map[uint][]notifications.Event
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{events: make(map[uint][]notifications.Event)}
}

func (r *eventRecorder) Publish(_ context.Context, userID uint, ev notifications.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[userID] = append(r.events[userID], ev)
}

func (r *eventRecorder) For(userID uint) []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Event(nil), r.events[userID]...)
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func testIssuer(store auth.TokenStore) *auth.Issuer {
	return auth.NewIssuer(auth.Settings{
		AccessSecret:  "access-secret-for-tests",
		AccessTTL:     time.Hour,
		RefreshSecret: "refresh-secret-for-tests",
		RefreshTTL:    24 * time.Hour,
		Issuer:        "vidtube-api",
		Audience:      "vidtube-client",
	}, store, nil)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "User " + username,
		Avatar:   "https://cdn.example.com/" + username + ".png",
		Password: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedVideo(t *testing.T, db *gorm.DB, owner *models.User, title string, published bool) *models.Video {
	t.Helper()
	v := &models.Video{
		Title:       title,
		Description: "about " + title,
		VideoFile:   "https://cdn.example.com/" + title + ".mp4",
		Thumbnail:   "https://cdn.example.com/" + title + ".png",
		IsPublished: true,
		OwnerID:     owner.ID,
	}
	require.NoError(t, db.Create(v).Error)
	if !published {
		require.NoError(t, db.Model(v).Update("is_published", false).Error)
		v.IsPublished = false
	}
	return v
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, status, appErr.Status, appErr.Message)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}
