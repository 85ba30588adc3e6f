package factor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ardnew/ecalc/log"
)

// gormLogger adapts log.Logger to gorm. Statements go to trace level and
// failed statements to debug; a missing record is not a failure.
type gormLogger struct {
	logger log.Logger
}

func (l gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l gormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, fmt.Sprintf(msg, args...))
}

func (l gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
}

func (l gormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
}

func (l gormLogger) Trace(
	ctx context.Context,
	begin time.Time,
	fc func() (sql string, rowsAffected int64),
	err error,
) {
	level := log.LevelTrace
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		level = log.LevelDebug
	}

	if !l.logger.Enabled(ctx, level) {
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", time.Since(begin)),
	}

	if level == log.LevelDebug {
		l.logger.DebugContext(ctx, "sql failed", append(attrs, slog.Any("error", err))...)

		return
	}

	l.logger.TraceContext(ctx, "sql", attrs...)
}
