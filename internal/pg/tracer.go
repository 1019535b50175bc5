package pg

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/remiges-tech/logharbour/logharbour"
)

// LogharbourPgxTracerLogger bridges tracelog.Logger and logharbour.Logger so that
// statements executed through pgx land in the application log under module "pgx".
type LogharbourPgxTracerLogger struct {
	logger   *logharbour.Logger
	logLevel *LogLevel
}

// LogLevel holds the pgx trace level and may be changed while a connection is in use.
type LogLevel struct {
	mu    sync.RWMutex
	level tracelog.LogLevel
}

func (l *LogLevel) Set(level tracelog.LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *LogLevel) Get() tracelog.LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// TraceLevelFor picks the pgx trace level matching an application log level name.
// pgx reports every statement at info, so statements are only traced at the debug levels.
func TraceLevelFor(level string) tracelog.LogLevel {
	switch level {
	case "debug2", "debug1":
		return tracelog.LogLevelTrace
	case "debug0":
		return tracelog.LogLevelInfo
	case "info", "warn":
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}

// Log implements tracelog.Logger.
func (l *LogharbourPgxTracerLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	// tracelog levels grow more verbose as the value increases
	if level > l.logLevel.Get() {
		return
	}

	logWithModule := l.logger.WithModule("pgx")

	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		logWithModule.Debug1().LogActivity(msg, data)
	case tracelog.LogLevelInfo:
		logWithModule.Info().LogActivity(msg, data)
	case tracelog.LogLevelWarn:
		logWithModule.Warn().LogActivity(msg, data)
	case tracelog.LogLevelError:
		logWithModule.Error(errors.New(msg)).LogActivity(msg, data)
	default:
		logWithModule.Info().LogActivity(msg, data)
	}
}
