package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// BlobStore keeps listing images in an S3-compatible bucket under
// listings/<listingID>/<imageID>.
type BlobStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *logger.Logger
}

func NewBlobStore(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*BlobStore, error) {
	log.Info("Initializing S3 MinIO Storage", zap.String("endpoint", endpoint), zap.String("bucket", bucketName), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("S3Storage: failed to create MinIO client", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Error("S3Storage: failed to check bucket", zap.String("bucket", bucketName), zap.Error(err))
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Error("S3Storage: failed to make bucket", zap.String("bucket", bucketName), zap.Error(err))
			return nil, fmt.Errorf("failed to make bucket %s: %w", bucketName, err)
		}
		log.Info("S3Storage: bucket created", zap.String("bucket", bucketName))
	}

	return &BlobStore{
		client:  client,
		bucket:  bucketName,
		baseURL: strings.TrimRight(client.EndpointURL().String(), "/"),
		logger:  log.Named("S3BlobStore"),
	}, nil
}

func objectKey(listingID, imageID string) string {
	return "listings/" + listingID + "/" + imageID
}

func (s *BlobStore) Put(ctx context.Context, listingID, imageID, contentType string, data []byte) (string, error) {
	key := objectKey(listingID, imageID)
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("Put: PutObject failed", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	s.logger.Debug("Put: object stored", zap.String("key", info.Key), zap.String("etag", info.ETag), zap.Int64("size", info.Size))
	return s.URL(listingID, imageID), nil
}

// URL is <endpoint>/<bucket>/<key>.
func (s *BlobStore) URL(listingID, imageID string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectKey(listingID, imageID))
}

func (s *BlobStore) Delete(ctx context.Context, listingID, imageID string) error {
	key := objectKey(listingID, imageID)
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}
