package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"campusmap/internal/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds the connection settings for an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Region skips the bucket-location lookup when set.
	Region string
}

// S3Service reads building snapshots from S3-compatible storage.
type S3Service struct {
	client *minio.Client
}

// NewS3Service initializes a new S3 storage service. No request is made until
// an object is read.
func NewS3Service(cfg S3Config) (*S3Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing one or more required settings: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &S3Service{client: minioClient}, nil
}

// GetBuildings streams a JSON array of buildings out of bucketName/objectKey.
func (s *S3Service) GetBuildings(ctx context.Context, bucketName, objectKey string) ([]models.Building, error) {
	object, err := s.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	var records []models.Building
	if err := json.NewDecoder(object).Decode(&records); err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code != "" {
			return nil, fmt.Errorf("failed to read %s/%s: %s", bucketName, objectKey, resp.Code)
		}
		return nil, fmt.Errorf("failed to decode JSON from stream: %w", err)
	}
	if records == nil {
		return nil, fmt.Errorf("failed to decode JSON from stream: %s/%s is not an array", bucketName, objectKey)
	}
	return records, nil
}

// S3Source adapts an S3Service to a single fixed object.
type S3Source struct {
	svc    *S3Service
	bucket string
	key    string
}

func NewS3Source(svc *S3Service, bucket, key string) *S3Source {
	return &S3Source{svc: svc, bucket: bucket, key: key}
}

func (s *S3Source) Name() string { return fmt.Sprintf("s3://%s/%s", s.bucket, s.key) }

func (s *S3Source) Fetch(ctx context.Context) ([]models.Building, error) {
	return s.svc.GetBuildings(ctx, s.bucket, s.key)
}
