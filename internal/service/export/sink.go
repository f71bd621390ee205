package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/logger"
)

// Artifact is one encoded export. Table is kept for sinks that store rows.
type Artifact struct {
	Key         string
	RunID       string
	Description string
	ContentType string
	Body        []byte
	Table       domain.OutputTable
}

type Sink interface {
	Write(ctx context.Context, artifact *Artifact) error
}

// FileSink writes artifacts under a local directory.
type FileSink struct {
	Dir string
}

func (s *FileSink) Write(ctx context.Context, artifact *Artifact) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	path := filepath.Join(s.Dir, artifact.Key)
	tmp, err := os.CreateTemp(s.Dir, "."+artifact.Key+".*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(artifact.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	logger.Infof(ctx, "exported %s (%d bytes)", path, len(artifact.Body))
	return nil
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
	// Region skips the bucket location lookup when set.
	Region    string
}

// MinioSink uploads artifacts to an S3-compatible bucket.
type MinioSink struct {
	client *minio.Client
	bucket string
}

func NewMinioSink(ctx context.Context, cfg MinioConfig) (*MinioSink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.BucketExists: %w", err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("client.MakeBucket, bucket-%s: %w", cfg.Bucket, err)
		}
		logger.Infof(ctx, "created bucket %s", cfg.Bucket)
	}

	return &MinioSink{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioSink) Write(ctx context.Context, artifact *Artifact) error {
	info, err := s.client.PutObject(ctx, s.bucket, artifact.Key,
		bytes.NewReader(artifact.Body), int64(len(artifact.Body)),
		minio.PutObjectOptions{
			ContentType: artifact.ContentType,
			UserMetadata: map[string]string{
				"run-id":      artifact.RunID,
				"description": artifact.Description,
			},
		})
	if err != nil {
		return fmt.Errorf("client.PutObject, key-%s: %w", artifact.Key, err)
	}

	logger.Infof(ctx, "uploaded s3://%s/%s (%d bytes)", info.Bucket, info.Key, info.Size)
	return nil
}

type PanelStore interface {
	InsertPanelRecords(ctx context.Context, runID, description string, table domain.OutputTable) error
}

// StoreSink persists the rows themselves instead of the encoded body.
type StoreSink struct {
	store PanelStore
}

func NewStoreSink(store PanelStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Write(ctx context.Context, artifact *Artifact) error {
	if err := s.store.InsertPanelRecords(ctx, artifact.RunID, artifact.Description, artifact.Table); err != nil {
		return fmt.Errorf("store.InsertPanelRecords: %w", err)
	}
	return nil
}
