package sentry

import "github.com/getsentry/sentry-go"

// Level 事件级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

func (l Level) toSentryLevel() sentry.Level {
	switch l {
	case LevelInfo:
		return sentry.LevelInfo
	case LevelWarning:
		return sentry.LevelWarning
	case LevelFatal:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}

// Stats 统计信息
type Stats struct {
	EventsTotal    uint64 `json:"events_total"`
	EventsCaptured uint64 `json:"events_captured"`
	EventsDropped  uint64 `json:"events_dropped"`
}
