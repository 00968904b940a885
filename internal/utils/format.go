package utils

import (
	"fmt"
	"time"
)

// TimestampLayout is how object modification times are shown on the dashboard.
const TimestampLayout = "2006-01-02 15:04:05 MST"

// FormatFileSize converts an object size to human-readable form (e.g. "1.5 MB")
func FormatFileSize(size int64) string {
	if size < 0 {
		return "0 B"
	}
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// FormatTimestamp renders t in UTC, or an empty string for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}
