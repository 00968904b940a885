package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		name     string
		size     int64
		expected string
	}{
		{"zero", 0, "0 B"},
		{"negative", -100, "0 B"},
		{"small", 500, "500 B"},
		{"one KB", 1024, "1.0 KB"},
		{"1.5 KB", 1536, "1.5 KB"},
		{"one MB", 1024 * 1024, "1.0 MB"},
		{"1.5 GB", 1536 * 1024 * 1024, "1.5 GB"},
		{"one TB", 1024 * 1024 * 1024 * 1024, "1.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatFileSize(tt.size))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Empty(t, FormatTimestamp(time.Time{}))

	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-03-09 13:05:07 UTC", FormatTimestamp(ts))
}
