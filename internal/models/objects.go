// Package models contains data structures used across handlers
package models

import "time"

// ObjectSummary is a read-only projection of one stored object
type ObjectSummary struct {
	Key                   string
	Size                  int64
	FormattedSize         string
	LastModified          time.Time
	FormattedLastModified string
	ContentType           string
	ETag                  string
}
