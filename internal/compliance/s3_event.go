package compliance

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
)

// HandleS3Event checks every object in an S3 notification. The result is
// compliant only if all records passed; each failing record raises its own
// alert.
func (c *Checker) HandleS3Event(ctx context.Context, event events.S3Event) (Result, error) {
	if len(event.Records) == 0 {
		return Result{}, errors.New("s3 event has no records")
	}

	allCompliant := true
	for _, record := range event.Records {
		key := record.S3.Object.URLDecodedKey
		if key == "" {
			key = record.S3.Object.Key
		}

		result, err := c.Check(ctx, Event{Bucket: record.S3.Bucket.Name, Key: key})
		if err != nil {
			return Result{}, err
		}
		if !result.Compliant {
			allCompliant = false
		}
	}

	return NewResult(allCompliant), nil
}
