package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Pakhtun2017/compliance-checker/internal/services"
	"github.com/minio/minio-go/v7"
)

type memoryObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// memoryStore is an in-process ObjectStore that behaves like a single S3
// bucket: keys list in lexical order and puts overwrite.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	calls   int
	listErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string]memoryObject)}
}

func (s *memoryStore) seed(key, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: []byte(content), contentType: "application/octet-stream", lastModified: time.Now().UTC()}
}

func (s *memoryStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *memoryStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *memoryStore) ListObjects(_ context.Context, _ string) ([]minio.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.listErr != nil {
		return nil, s.listErr
	}

	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	infos := make([]minio.ObjectInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, s.info(key))
	}
	return infos, nil
}

func (s *memoryStore) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.objects[objectName] = memoryObject{data: data, contentType: opts.ContentType, lastModified: time.Now().UTC()}
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (s *memoryStore) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	delete(s.objects, objectName)
	return nil
}

func (s *memoryStore) GetObjectReader(_ context.Context, _, objectName string, _ minio.GetObjectOptions) (io.ReadCloser, minio.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	obj, ok := s.objects[objectName]
	if !ok {
		return nil, minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	}
	return io.NopCloser(bytes.NewReader(obj.data)), s.info(objectName), nil
}

func (s *memoryStore) BucketExists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (s *memoryStore) info(key string) minio.ObjectInfo {
	obj := s.objects[key]
	return minio.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.lastModified,
	}
}

var _ services.ObjectStore = (*memoryStore)(nil)
