package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/printops/jobtrack/internal/config"
)

// MaxUploadSize caps a single attached file (25MB).
const MaxUploadSize = 25 * 1024 * 1024

// FileStore abstracts the object storage backend for job attachments.
type FileStore interface {
	// Upload streams one file to the store and returns its durable public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// DeleteByURL removes the object a previously returned URL points at.
	DeleteByURL(ctx context.Context, fileURL string) error
}

// S3 provides object storage for uploaded job files.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      config.StorageConfig
	logger   *zap.Logger
}

// NewS3 creates an S3-backed file store using static credentials when
// configured, otherwise the default credential chain.
func NewS3(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else if logger != nil {
		logger.Warn("storage using default credential chain")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	return &S3{client: client, uploader: uploader, cfg: cfg, logger: logger}, nil
}

// JobFileKey builds the object key for a job attachment. The millisecond
// timestamp prefix keeps same-named files from colliding.
func JobFileKey(jobID, filename string) string {
	prefix := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), path.Base(filename))
	return path.Join("jobs", jobID, "updates", prefix)
}

// Upload streams a file to the bucket and returns its public URL.
func (s *S3) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	var sizePtr *int64
	if size > 0 {
		sizePtr = &size
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: sizePtr,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

// DeleteByURL removes the object behind a public URL. URLs that do not
// point at this bucket are rejected so the reaper can skip them.
func (s *S3) DeleteByURL(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

func (s *S3) keyFromURL(fileURL string) (string, error) {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.cfg.Bucket, s.cfg.Region)
	if !strings.HasPrefix(fileURL, prefix) {
		return "", fmt.Errorf("url does not reference bucket %s: %s", s.cfg.Bucket, fileURL)
	}
	key := strings.TrimPrefix(fileURL, prefix)
	if key == "" {
		return "", fmt.Errorf("empty object key in url %s", fileURL)
	}
	return key, nil
}
