package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// QueryLogger routes GORM output through slog so SQL lines carry the request
// and trace ids of the context they ran under.
type QueryLogger struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

var _ logger.Interface = (*QueryLogger)(nil)

// NewQueryLogger reports failures, slow statements and, at logger.Info, every
// statement.
func NewQueryLogger(l *slog.Logger, level logger.LogLevel) *QueryLogger {
	return &QueryLogger{log: l, level: level, slow: slowQueryThreshold}
}

func (q *QueryLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *q
	clone.level = level
	return &clone
}

func (q *QueryLogger) emit(ctx context.Context, min logger.LogLevel, lvl slog.Level, msg string, data []interface{}) {
	if q.level >= min {
		q.log.Log(ctx, lvl, fmt.Sprintf(msg, data...))
	}
}

func (q *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	q.emit(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (q *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	q.emit(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (q *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	q.emit(ctx, logger.Error, slog.LevelError, msg, data)
}

// Trace is called by GORM after every statement. Record-not-found is a normal
// outcome for lookups and is never logged as an error.
func (q *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := q.slow > 0 && elapsed > q.slow

	var (
		lvl slog.Level
		msg string
	)
	switch {
	case failed && q.level >= logger.Error:
		lvl, msg = slog.LevelError, "sql failed"
	case slow && q.level >= logger.Warn:
		lvl, msg = slog.LevelWarn, "sql slow"
	case q.level >= logger.Info:
		lvl, msg = slog.LevelInfo, "sql"
	default:
		return
	}

	stmt, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", stmt),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if failed {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	q.log.LogAttrs(ctx, lvl, msg, attrs...)
}
