package logger

import (
	"io"

	"github.com/remiges-tech/logharbour/logharbour"
)

// LoadLogger creates a new LogHarbour logger writing to w that drops entries below level.
func LoadLogger(appName, level string, w io.Writer) (*logharbour.Logger, error) {
	priority, err := ParsePriority(level)
	if err != nil {
		return nil, err
	}
	loggerContext := logharbour.NewLoggerContext(priority)
	return logharbour.NewLogger(loggerContext, appName, w), nil
}
