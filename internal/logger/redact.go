package logger

import (
	"regexp"

	"github.com/sirupsen/logrus"
)

const redacted = "[REDACTED]"

type redactRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var redactRules = []redactRule{
	{regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/=-]+`), "${1}" + redacted},
	{regexp.MustCompile(`(?i)(appian-api-key["']?\s*[:=]\s*["']?)[^\s"',;]+`), "${1}" + redacted},
	{regexp.MustCompile(`(?i)(api[_-]?key["']?\s*[:=]\s*["']?)[^\s"',;&]+`), "${1}" + redacted},
	{regexp.MustCompile(`(://[^/\s:@]+:)[^@/\s]+@`), "${1}" + redacted + "@"},
}

// Redact masks API keys, bearer tokens and URL credentials in s
func Redact(s string) string {
	for _, rule := range redactRules {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	return s
}

// redactHook scrubs every entry before it is formatted
type redactHook struct{}

func (redactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (redactHook) Fire(entry *logrus.Entry) error {
	entry.Message = Redact(entry.Message)
	for k, v := range entry.Data {
		if s, ok := v.(string); ok {
			entry.Data[k] = Redact(s)
		}
	}
	return nil
}
