package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jhoicas/cargotrack-api/internal/application/contract"
	"github.com/jhoicas/cargotrack-api/internal/domain"
)

var _ contract.BlobStorage = (*GCSStorage)(nil)

// DriverGCS nombre del driver de Google Cloud Storage.
const DriverGCS = "gcs"

// GCSStorage objetos en un bucket de GCS.
type GCSStorage struct {
	client *storage.Client
	bucket string
}

// NewGCSStorage credentialsFile vacío = Application Default Credentials.
func NewGCSStorage(ctx context.Context, bucket, credentialsFile string) (*GCSStorage, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: cliente gcs: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) Driver() string { return DriverGCS }

func (s *GCSStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: escribir gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: cerrar gs://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *GCSStorage) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage: leer gs://%s/%s: %w", s.bucket, key, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("storage: borrar gs://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Close libera el cliente.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
