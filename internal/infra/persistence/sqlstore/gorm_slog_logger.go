package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"userstore/config"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gormSlogLogger struct {
	logger                     *slog.Logger
	level                      logger.LogLevel
	slowThreshold              time.Duration
	formatSQL                  bool
	ignoreRecordNotFoundErrors bool
}

// newGormSlogLogger logs every statement when showSql or debug is on; otherwise only slow and failed ones.
func newGormSlogLogger(baseLogger *slog.Logger, cfg *config.Config) logger.Interface {
	l := &gormSlogLogger{
		logger:                     baseLogger,
		level:                      logger.Warn,
		slowThreshold:              config.DefaultSlowThreshold,
		ignoreRecordNotFoundErrors: true,
	}
	if cfg == nil {
		return l
	}

	if cfg.Env.Debug || cfg.Database.ShowSQL {
		l.level = logger.Info
	}
	if cfg.Database.SlowThreshold > 0 {
		l.slowThreshold = cfg.Database.SlowThreshold
	}
	l.formatSQL = cfg.Database.FormatSQL

	return l
}

func (l *gormSlogLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Info, slog.LevelInfo, "GORM info", msg, args...)
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Warn, slog.LevelWarn, "GORM warn", msg, args...)
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Error, slog.LevelError, "GORM error", msg, args...)
}

func (l *gormSlogLogger) log(ctx context.Context, threshold logger.LogLevel, level slog.Level, title, msg string, args ...any) {
	if l.level < threshold || l.logger == nil {
		return
	}

	l.logger.LogAttrs(ctx, level, title, slog.String("message", fmt.Sprintf(msg, args...)))
}

func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, sqlAndRowsFn func() (string, int64), err error) {
	if l.logger == nil || l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case l.shouldLogError(err):
		attrs := append(l.buildQueryAttrs(sqlAndRowsFn, elapsed), slog.String("error", err.Error()))
		l.logger.LogAttrs(ctx, slog.LevelError, "GORM query failed", attrs...)
	case l.shouldLogSlow(elapsed):
		attrs := append(l.buildQueryAttrs(sqlAndRowsFn, elapsed), slog.Duration("slowThreshold", l.slowThreshold))
		l.logger.LogAttrs(ctx, slog.LevelWarn, "GORM slow query", attrs...)
	case l.level >= logger.Info:
		l.logger.LogAttrs(ctx, slog.LevelInfo, "GORM query", l.buildQueryAttrs(sqlAndRowsFn, elapsed)...)
	}
}

func (l *gormSlogLogger) buildQueryAttrs(sqlAndRowsFn func() (string, int64), elapsed time.Duration) []slog.Attr {
	sql, rows := sqlAndRowsFn()
	if l.formatSQL {
		sql = formatSQL(sql)
	}

	return []slog.Attr{
		slog.Duration("elapsed", elapsed),
		slog.Int64("rows", rows),
		slog.String("sql", sql),
	}
}

func (l *gormSlogLogger) shouldLogError(err error) bool {
	if err == nil || l.level < logger.Error {
		return false
	}

	if l.ignoreRecordNotFoundErrors && errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}

	return true
}

func (l *gormSlogLogger) shouldLogSlow(elapsed time.Duration) bool {
	return l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn
}

type sqlBreak struct {
	keyword string
	indent  string
}

// Longer keywords come first so "ORDER BY" is never split as "OR".
var sqlBreaks = []sqlBreak{
	{keyword: "ON DUPLICATE KEY UPDATE"},
	{keyword: "INNER JOIN"},
	{keyword: "LEFT JOIN"},
	{keyword: "RIGHT JOIN"},
	{keyword: "GROUP BY"},
	{keyword: "ORDER BY"},
	{keyword: "RETURNING"},
	{keyword: "HAVING"},
	{keyword: "VALUES"},
	{keyword: "OFFSET"},
	{keyword: "WHERE"},
	{keyword: "LIMIT"},
	{keyword: "FROM"},
	{keyword: "SET"},
	{keyword: "AND", indent: "    "},
	{keyword: "OR", indent: "    "},
}

// formatSQL puts each clause of a logged statement on its own line. Quoted text is left untouched.
func formatSQL(stmt string) string {
	var b strings.Builder
	b.Grow(len(stmt) + 16)

	var quote byte
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}

			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
		case ' ':
			if indent, ok := sqlBreakAt(stmt[i+1:]); ok {
				b.WriteByte('\n')
				b.WriteString(indent)

				continue
			}
		}
		b.WriteByte(c)
	}

	return b.String()
}

func sqlBreakAt(rest string) (string, bool) {
	for _, br := range sqlBreaks {
		n := len(br.keyword)
		if len(rest) < n || !strings.EqualFold(rest[:n], br.keyword) {
			continue
		}
		if len(rest) > n && rest[n] != ' ' {
			continue
		}

		return br.indent, true
	}

	return "", false
}
