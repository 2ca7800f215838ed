package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"college-portal-api/config"
	"college-portal-api/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

type MinIOService struct {
	client       *minio.Client
	sourceBucket string
	targetBucket string
	urlTTL       time.Duration
}

func NewMinIOService(cfg *config.Config) (*MinIOService, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOService{
		client:       client,
		sourceBucket: cfg.SourceBucket,
		targetBucket: cfg.TargetBucket,
		urlTTL:       cfg.PresignedURLTTL,
	}, nil
}

// EnsureBuckets creates the upload and document buckets if missing
func (s *MinIOService) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.sourceBucket, s.targetBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		log.Printf("MinIOService - creating bucket %s", bucket)
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// GetObject reads a document object from the target bucket
func (s *MinIOService) GetObject(ctx context.Context, objectPath string) ([]byte, error) {
	exists, err := s.ObjectExistsInBucket(ctx, s.targetBucket, objectPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return s.DownloadFile(ctx, s.targetBucket, objectPath)
}

// PutObject writes a JSON document object to the target bucket
func (s *MinIOService) PutObject(ctx context.Context, objectPath string, data []byte) error {
	return s.UploadFile(ctx, s.targetBucket, objectPath, bytes.NewReader(data), int64(len(data)), "application/json")
}

// ArchiveUpload stores the original upload in the source bucket
func (s *MinIOService) ArchiveUpload(ctx context.Context, objectPath string, data []byte, contentType string) error {
	return s.UploadFile(ctx, s.sourceBucket, objectPath, bytes.NewReader(data), int64(len(data)), contentType)
}

// ListUploads returns archived uploads under prefix
func (s *MinIOService) ListUploads(ctx context.Context, prefix string) ([]models.UploadFile, error) {
	log.Println("MinIOService - ListUploads")
	files := make([]models.UploadFile, 0)

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	for object := range s.client.ListObjects(ctx, s.sourceBucket, opts) {
		if object.Err != nil {
			return nil, object.Err
		}
		if strings.HasSuffix(object.Key, "/") {
			continue
		}

		files = append(files, models.UploadFile{
			Name:         extractFileName(object.Key),
			Path:         object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ETag:         object.ETag,
			Version:      object.VersionID,
		})
	}

	return files, nil
}

// GetPresignedURL returns a presigned download URL for an archived upload
func (s *MinIOService) GetPresignedURL(ctx context.Context, objectPath string) (*models.PresignedURLResponse, error) {
	exists, err := s.ObjectExistsInBucket(ctx, s.sourceBucket, objectPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=\"%s\"", extractFileName(objectPath)))

	presignedURL, err := s.client.PresignedGetObject(ctx, s.sourceBucket, objectPath, s.urlTTL, reqParams)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned url: %w", err)
	}

	return &models.PresignedURLResponse{
		URL:       presignedURL.String(),
		ExpiresAt: time.Now().Add(s.urlTTL),
		FileName:  extractFileName(objectPath),
	}, nil
}

// ObjectExistsInBucket checks whether objectPath exists in bucket
func (s *MinIOService) ObjectExistsInBucket(ctx context.Context, bucket, objectPath string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, objectPath, minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DownloadFile reads an object from bucket
func (s *MinIOService) DownloadFile(ctx context.Context, bucket, objectPath string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return data, nil
}

// UploadFile writes an object to bucket
func (s *MinIOService) UploadFile(ctx context.Context, bucket, objectPath string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, objectPath, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func extractFileName(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}
