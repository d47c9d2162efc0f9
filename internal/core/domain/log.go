package domain

import (
	"fmt"
	"strings"
	"time"
)

// Level enumerates the severities a log record may carry.
type Level string

const (
	LevelError   Level = "ERROR"
	LevelWarning Level = "WARNING"
	LevelInfo    Level = "INFO"
	LevelDebug   Level = "DEBUG"
)

// ParseLevel converts a caller-supplied string into a Level, accepting any casing.
func ParseLevel(value string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(LevelError):
		return LevelError, nil
	case string(LevelWarning):
		return LevelWarning, nil
	case string(LevelInfo):
		return LevelInfo, nil
	case string(LevelDebug):
		return LevelDebug, nil
	default:
		return "", fmt.Errorf("unknown log level %q", value)
	}
}

// LogRecord mirrors a persisted row in the logs table. Records are written by the
// ingestion pipeline and are read-only everywhere in this service.
type LogRecord struct {
	ID            int64
	Timestamp     time.Time
	Level         Level
	Message       string
	ApplicationID int64
}
