package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bambara-asr-leaderboard/internal/config"
	"bambara-asr-leaderboard/internal/logging"
)

// MinioClient wraps a MinIO connection and the bucket the service uses for
// reference objects and archived submissions.
type MinioClient struct {
	Client     *minio.Client
	BucketName string
}

// NewMinioClient connects to the configured MinIO endpoint and ensures the
// bucket exists. Returns nil without error when no endpoint is configured:
// object storage is optional.
func NewMinioClient(ctx context.Context, cfg config.MinioConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, fmt.Errorf("MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, and MINIO_BUCKET_NAME must be set when MINIO_ENDPOINT is")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if MinIO bucket '%s' exists: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create MinIO bucket '%s': %w", cfg.BucketName, err)
		}
		logging.Log.Info().Str("bucket", cfg.BucketName).Msg("created MinIO bucket")
	}

	logging.Log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("MinIO client initialized")
	return &MinioClient{Client: client, BucketName: cfg.BucketName}, nil
}

// ArchiveSubmission stores the raw bytes of an accepted submission under a
// unique object name derived from a fresh UUID, preserving the original
// file extension, and returns that name.
func (mc *MinioClient) ArchiveSubmission(ctx context.Context, originalFilename string, data []byte) (string, error) {
	objectName := fmt.Sprintf("submissions/%s%s", uuid.New().String(), filepath.Ext(originalFilename))

	info, err := mc.Client.PutObject(ctx, mc.BucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive submission to MinIO (bucket: %s, object: %s): %w", mc.BucketName, objectName, err)
	}

	logging.Log.Info().Str("object", objectName).Int64("size", info.Size).Msg("archived submission")
	return objectName, nil
}

// GetObjectBytes retrieves an object from the bucket as a byte slice.
func (mc *MinioClient) GetObjectBytes(ctx context.Context, objectName string) ([]byte, error) {
	object, err := mc.Client.GetObject(ctx, mc.BucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", objectName, mc.BucketName, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object '%s' data: %w", objectName, err)
	}
	return data, nil
}
