// Package s3 uploads media files to an S3 bucket.
package s3

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type Config struct {
	Region   string
	Bucket   string
	Endpoint string // optional, for S3-compatible hosts
}

type Uploader struct {
	bucket   string
	uploader *s3manager.Uploader
}

func NewUploader(cfg Config) (*Uploader, error) {
	// Initialize AWS session
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return &Uploader{bucket: cfg.Bucket, uploader: s3manager.NewUploader(sess)}, nil
}

// Upload stores the file at localPath under key and returns its URL.
func (u *Uploader) Upload(ctx context.Context, localPath, key string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	// Determine the file's MIME type
	contentType := ContentType(key)

	result, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3: %w", key, err)
	}

	// Return the URL of the uploaded file
	return result.Location, nil
}

// Delete removes the object stored under key.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.uploader.S3.DeleteObjectWithContext(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s from s3: %w", key, err)
	}
	return nil
}

// ContentType guesses from the extension, falling back to octet-stream.
func ContentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
