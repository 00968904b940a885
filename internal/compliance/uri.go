package compliance

import (
	"fmt"
	"regexp"
)

var s3URI = regexp.MustCompile(`^s3://([^/]+)/(.+)$`)

// ParseURI splits s3://bucket/key into an Event
func ParseURI(uri string) (Event, error) {
	match := s3URI.FindStringSubmatch(uri)
	if match == nil {
		return Event{}, fmt.Errorf("invalid S3 URI %q (expected s3://<bucket>/<key>)", uri)
	}
	return Event{Bucket: match[1], Key: match[2]}, nil
}
