package logger

import (
	"fmt"
	"strings"

	"github.com/remiges-tech/logharbour/logharbour"
)

var priorities = map[string]logharbour.LogPriority{
	"debug2": logharbour.Debug2,
	"debug1": logharbour.Debug1,
	"debug0": logharbour.Debug0,
	"info":   logharbour.Info,
	"warn":   logharbour.Warn,
	"err":    logharbour.Err,
	"crit":   logharbour.Crit,
	"sec":    logharbour.Sec,
}

// ParsePriority maps a level name such as "info" or "debug0" to a logharbour priority.
func ParsePriority(level string) (logharbour.LogPriority, error) {
	p, ok := priorities[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return logharbour.DefaultPriority, fmt.Errorf("unknown log level %q", level)
	}
	return p, nil
}
