package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// LogLevel is the severity of a deployment log entry
type LogLevel string

// Log levels
const (
	LogLevelError LogLevel = "Error"
	LogLevelWarn  LogLevel = "Warn"
	LogLevelInfo  LogLevel = "Info"
	LogLevelDebug LogLevel = "Debug"
)

// ParseLogLevel converts a string to a LogLevel
func ParseLogLevel(str string) (LogLevel, error) {
	switch LogLevel(str) {
	case LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug:
		return LogLevel(str), nil
	default:
		return "", fmt.Errorf("invalid log level: %q", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for LogLevel
func (l *LogLevel) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	level, err := ParseLogLevel(str)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// LogEntry is one line of a deployment log
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
}

// LogsResponse is a page of deployment log entries
type LogsResponse struct {
	Logs    []LogEntry `json:"logs"`
	Total   int        `json:"total"`
	HasMore bool       `json:"hasMore"`
}
