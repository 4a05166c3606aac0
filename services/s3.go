package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"clutchjobs/config"
)

type StorageService struct {
	s3Client *s3.S3
	bucket   string
	region   string
}

func NewStorageService(cfg config.StorageConfig) (*StorageService, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Region == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("AWS credentials not configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
	}, nil
}

// Upload stores a binary artifact under the given path and returns its
// publicly resolvable URL. Re-uploading the same path overwrites.
func (s *StorageService) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		// The bucket is configured for public read access; ACLs are not
		// supported on it.
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	url := s.PublicURL(path)
	log.Printf("Artifact uploaded to S3: %s", url)
	return url, nil
}

// PublicURL returns the bucket's public URL for a stored path.
func (s *StorageService) PublicURL(path string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, path)
}

// GeneratePresignedURL generates a presigned URL for secure downloads
func (s *StorageService) GeneratePresignedURL(path string) (string, error) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})

	// Expires in 1 hour
	url, err := req.Presign(1 * time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %v", err)
	}

	return url, nil
}

// Delete removes a stored artifact by path.
func (s *StorageService) Delete(path string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}

	_, err := s.s3Client.DeleteObject(input)
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %v", err)
	}

	log.Printf("Artifact deleted from S3: %s", path)
	return nil
}
