package storage

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/yourusername/rhodes-guide-api/internal/pkg/errors"
)

// MinioImageStore реализует repository.ImageStore поверх S3-совместимого
// объектного хранилища MinIO. Используется, когда изображения маркеров
// должны переживать переустановку сервиса.
type MinioImageStore struct {
	client *minio.Client
	bucket string
}

// MinioConfig - параметры подключения к MinIO
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// NewMinioImageStore подключается к MinIO и гарантирует существование бакета
func NewMinioImageStore(cfg MinioConfig) (*MinioImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinioImageStore{client: client, bucket: cfg.Bucket}
	if err := s.ensureBucket(); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	log.Printf("MinIO image store ready: endpoint=%s bucket=%s", cfg.Endpoint, cfg.Bucket)
	return s, nil
}

func (s *MinioImageStore) ensureBucket() error {
	ctx := context.Background()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Save загружает изображение в бакет и возвращает долговременный путь объекта
func (s *MinioImageStore) Save(ctx context.Context, originalName, contentType string, size int64, r io.Reader) (string, error) {
	objectName := durableName(originalName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %v", apperrors.ErrImageStore, objectName, err)
	}

	return fmt.Sprintf("%s/%s", s.bucket, objectName), nil
}
