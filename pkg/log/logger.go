package log

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	scierrors "github.com/YuminosukeSato/scibench/pkg/errors"
)

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(nil, LevelWarn)
)

// SetupLogger configures both the slog default logger and the package
// provider to write JSON records at loglevel to w. It also routes warnings
// raised through pkg/errors to the "warnings" logger.
func SetupLogger(loglevel string, w io.Writer) {
	level := ToLogLevel(loglevel)
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			case slog.SourceKey:
				attr = slog.Attr{
					Key:   "logging.googleapis.com/sourceLocation",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(w, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))

	SetProvider(NewZerologProvider(w, Level(level)))
	scierrors.SetWarningHandler(func(warning error) {
		GetLoggerWithName("warnings").Warn(warning.Error(), "warning", warning)
	})
}

// ToLogLevel maps a level name to slog.Level. It panics on unknown names.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

// SetProvider replaces the package-wide provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger of the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with the component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
