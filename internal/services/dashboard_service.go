package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Pakhtun2017/compliance-checker/internal/models"
	"github.com/Pakhtun2017/compliance-checker/internal/utils"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

// DashboardService runs list, upload and delete against the configured
// bucket. Store failures never escape it: each outcome becomes a
// Notification for the user.
type DashboardService struct {
	store   ObjectStore
	bucket  string
	timeout time.Duration
	log     zerolog.Logger
}

func NewDashboardService(store ObjectStore, bucket string, timeout time.Duration, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		store:   store,
		bucket:  bucket,
		timeout: timeout,
		log:     log.With().Str("bucket", bucket).Logger(),
	}
}

// Bucket returns the bucket the service operates on
func (s *DashboardService) Bucket() string {
	return s.bucket
}

// ListObjects returns one snapshot of the bucket in store order. On failure
// it returns an empty slice and an error notification.
func (s *DashboardService) ListObjects(ctx context.Context) ([]models.ObjectSummary, *models.Notification) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.store.ListObjects(ctx, s.bucket)
	if err != nil {
		s.log.Warn().Err(err).Msg("list objects failed")
		n := models.Error(fmt.Sprintf("Error fetching files: %v", err))
		return []models.ObjectSummary{}, &n
	}

	objects := make([]models.ObjectSummary, 0, len(raw))
	for _, obj := range raw {
		objects = append(objects, summarize(obj))
	}
	return objects, nil
}

// DeleteObject removes key from the bucket. A key that is empty after
// trimming is rejected without calling the store. Deleting a missing key
// reports whatever the store answers.
func (s *DashboardService) DeleteObject(ctx context.Context, key string) models.Notification {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.Error("No file selected for deletion.")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("delete object failed")
		return models.Error(fmt.Sprintf("Error deleting %s: %v", key, err))
	}

	s.log.Info().Str("key", key).Msg("object deleted")
	return models.Success(fmt.Sprintf("%s deleted successfully.", key))
}

// UploadObject stores reader under name, replacing any object with the same
// name. size may be -1 when unknown.
func (s *DashboardService) UploadObject(ctx context.Context, name string, reader io.Reader, size int64, contentType string) models.Notification {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.store.PutObject(ctx, s.bucket, name, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("key", name).Msg("upload object failed")
		return models.Error(fmt.Sprintf("Upload of %s failed: %v", name, err))
	}

	s.log.Info().Str("key", name).Int64("size", size).Msg("object uploaded")
	return models.Success(fmt.Sprintf("%s uploaded successfully!", name))
}

// OpenObject returns a reader for key together with its metadata. Unlike the
// other operations it returns the store error to the caller.
func (s *DashboardService) OpenObject(ctx context.Context, key string) (io.ReadCloser, models.ObjectSummary, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, models.ObjectSummary{}, fmt.Errorf("object key is required")
	}

	// No timeout here: the body is streamed after this call returns and is
	// bounded by the request context instead.
	reader, info, err := s.store.GetObjectReader(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, models.ObjectSummary{}, err
	}
	return reader, summarize(info), nil
}

// Ping checks that the bucket is reachable and exists
func (s *DashboardService) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.store.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func (s *DashboardService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func summarize(obj minio.ObjectInfo) models.ObjectSummary {
	return models.ObjectSummary{
		Key:                   obj.Key,
		Size:                  obj.Size,
		FormattedSize:         utils.FormatFileSize(obj.Size),
		LastModified:          obj.LastModified,
		FormattedLastModified: utils.FormatTimestamp(obj.LastModified),
		ContentType:           obj.ContentType,
		ETag:                  obj.ETag,
	}
}
