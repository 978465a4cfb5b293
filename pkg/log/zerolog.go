package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// zerologLogger implements Logger on top of zerolog. The minimum level is
// shared with the provider that created it, so SetLevel affects loggers that
// were handed out earlier.
type zerologLogger struct {
	zl    zerolog.Logger
	level *atomic.Int64
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.emit(LevelDebug, msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	l.emit(LevelInfo, msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.emit(LevelWarn, msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	l.emit(LevelError, msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if err, ok := fields[i+1].(error); ok {
			ctx = ctx.AnErr(key, err)
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger(), level: l.level}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return Level(l.level.Load()) <= level
}

func (l *zerologLogger) emit(level Level, msg string, fields []any) {
	if !l.Enabled(context.Background(), level) {
		return
	}

	var e *zerolog.Event
	switch level {
	case LevelDebug:
		e = l.zl.Debug()
	case LevelInfo:
		e = l.zl.Info()
	case LevelWarn:
		e = l.zl.Warn()
	default:
		e = l.zl.Error()
	}

	// A leading error value is logged under the standard error key.
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			addError(e, zerolog.ErrorFieldName, err)
			fields = fields[1:]
		}
	}

	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			e.Interface("!BADKEY", fields[i])
			break
		}
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			addError(e, key, v)
		case zerolog.LogObjectMarshaler:
			e.Object(key, v)
		default:
			e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

// addError logs err under key and, when an error in its chain knows how to
// marshal itself, its structured fields under key+"_detail".
func addError(e *zerolog.Event, key string, err error) {
	e.AnErr(key, err)
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		e.Object(key+"_detail", m)
	}
}

// ZerologProvider implements LoggerProvider with a single zerolog root.
type ZerologProvider struct {
	root  zerolog.Logger
	level *atomic.Int64
}

// NewZerologProvider creates a provider writing to w (os.Stderr when nil).
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	if w == nil {
		w = os.Stderr
	}
	lv := &atomic.Int64{}
	lv.Store(int64(level))
	return &ZerologProvider{
		root:  zerolog.New(w).With().Timestamp().Logger(),
		level: lv,
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{zl: p.root, level: p.level}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.level.Store(int64(level))
}
