// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ownerProjection is the public profile joined onto owned rows.
const ownerProjection = "users.username AS owner_username, users.full_name AS owner_full_name, users.avatar AS owner_avatar"

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// notFoundOr maps gorm.ErrRecordNotFound to a 404 with msg and anything else to a 500.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(msg)
	}
	return models.NewInternalError(err)
}

// OwnerColumns receives the owner projection of a joined read.
type OwnerColumns struct {
	OwnerUsername string
	OwnerFullName string
	OwnerAvatar   string
}

func (o OwnerColumns) owner(id uint) *models.Owner {
	return &models.Owner{ID: id, Username: o.OwnerUsername, FullName: o.OwnerFullName, Avatar: o.OwnerAvatar}
}

type videoRow struct {
	models.Video
	OwnerColumns
}

func (r videoRow) toModel() *models.Video {
	v := r.Video
	v.Owner = r.owner(v.OwnerID)
	return &v
}

func videoRowsToModels(rows []videoRow) []*models.Video {
	out := make([]*models.Video, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is a LIKE pattern for a case-insensitive substring match.
// Use it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
