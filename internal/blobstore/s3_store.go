package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures the MinIO/S3 client.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Folder    string
}

// S3Store keeps images in an S3-compatible bucket. References are object
// keys prefixed with "/" so they read the same as FileStore references.
type S3Store struct {
	client *minio.Client
	bucket string
	region string
	folder string
	rules  Rules
}

func NewS3Store(opts S3Options, rules Rules) (*S3Store, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	folder := opts.Folder
	if folder == "" {
		folder = DefaultFolder
	}
	return &S3Store{
		client: client,
		bucket: opts.Bucket,
		region: opts.Region,
		folder: folder,
		rules:  rules,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Store) Save(ctx context.Context, u *Upload) (string, error) {
	ext, err := s.rules.Validate(u)
	if err != nil {
		return "", err
	}

	key := objectName(s.folder, ext)
	contentType := u.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(u.Content), int64(len(u.Content)), opts); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return "/" + key, nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, "/")
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
