package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"vidtube/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		wantUsername string
		wantNotFound bool
		wantErr      bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			wantUsername: "testuser",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			wantErr:      true,
			wantNotFound: true,
		},
		{
			name:   "Database Error",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(2, 1).
					WillReturnError(errors.New("connection timeout"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, user)
				assert.Equal(t, tt.wantNotFound, models.IsNotFound(err))
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.wantUsername, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_Conflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "taken", Email: "taken@example.com"})
	require.Error(t, err)
	assert.Equal(t, 409, models.StatusOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SwapRefreshToken(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`UPDATE "users" SET "refresh_token"=$1,"updated_at"=$2 WHERE id = $3 AND refresh_token = $4`)

	mock.ExpectBegin()
	mock.ExpectExec(query).
		WithArgs("next", sqlmock.AnyArg(), 1, "current").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	swapped, err := repo.SwapRefreshToken(ctx, 1, "current", "next")
	require.NoError(t, err)
	assert.True(t, swapped)

	mock.ExpectBegin()
	mock.ExpectExec(query).
		WithArgs("again", sqlmock.AnyArg(), 1, "current").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	swapped, err = repo.SwapRefreshToken(ctx, 1, "current", "again")
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetProfileOmitsCredentials(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	u := createUser(t, db, "alice")
	token := "refresh"
	require.NoError(t, repo.SetRefreshToken(context.Background(), u.ID, &token))

	profile, err := repo.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Empty(t, profile.Password)
	assert.Nil(t, profile.RefreshToken)

	full, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, full.RefreshToken)
	assert.Equal(t, "refresh", *full.RefreshToken)
}

func TestUserRepository_FindByUsernameOrEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	createUser(t, db, "alice")

	byEmail, err := repo.FindByUsernameOrEmail(ctx, "", "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "alice", byEmail.Username)

	missing, err := repo.FindByUsernameOrEmail(ctx, "bob", "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_UpdateFieldsEmailTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	err := repo.UpdateFields(context.Background(), bob.ID, map[string]any{"email": "alice@example.com"})
	require.Error(t, err)
	assert.Equal(t, 409, models.StatusOf(err))
}

func TestUserRepository_ChannelProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	require.NoError(t, db.Create(&models.Subscription{SubscriberID: bob.ID, ChannelID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Subscription{SubscriberID: carol.ID, ChannelID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Subscription{SubscriberID: alice.ID, ChannelID: bob.ID}).Error)

	profile, err := repo.ChannelProfile(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.SubscribersCount)
	assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	profile, err = repo.ChannelProfile(ctx, "bob", carol.ID)
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)

	_, err = repo.ChannelProfile(ctx, "nobody", alice.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_WatchHistory(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	videos := NewVideoRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner")
	viewer := createUser(t, db, "viewer")
	first := createVideo(t, db, owner, "first")
	second := createVideo(t, db, owner, "second")

	for _, id := range []uint{first.ID, second.ID, first.ID} {
		_, err := videos.RecordView(ctx, id, viewer.ID)
		require.NoError(t, err)
	}

	history, err := users.WatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
	require.NotNil(t, history[0].Owner)
	assert.Equal(t, "owner", history[0].Owner.Username)
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres code", &pgconn.PgError{Code: "23505"}, true},
		{"other postgres code", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), true},
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueConstraintError(tt.err))
		})
	}
}
