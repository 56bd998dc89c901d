package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/St1cky1/haccp-service/internal/config"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3BlobStore - S3 и совместимые хранилища (MinIO)
type S3BlobStore struct {
	client     *s3.Client
	bucketName string
	baseURL    string
}

func NewS3BlobStore(ctx context.Context, cfg config.S3Config, baseURL string) (*S3BlobStore, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // для MinIO
		}
	})

	return &S3BlobStore{
		client:     client,
		bucketName: cfg.BucketName,
		baseURL:    baseURL,
	}, nil
}

func (s *S3BlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *S3BlobStore) Get(ctx context.Context, path string) (*entity.DownloadedFile, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", entity.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	contentType := aws.ToString(result.ContentType)
	if contentType == "" {
		contentType = contentTypeByExt(key)
	}
	return &entity.DownloadedFile{Data: data, ContentType: contentType}, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, path string) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3BlobStore) URL(path string) string {
	return publicURL(s.baseURL, path)
}
