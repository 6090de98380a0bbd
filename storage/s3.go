// Package storage kapselt den S3-kompatiblen Objektspeicher für Exporte und Backups.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"chem-trans-api/config"
)

// Object ist ein Eintrag im Bucket.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store schreibt in genau einen Bucket.
type Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// NewStore erstellt einen S3-Client für den konfigurierten Endpunkt (z.B. Strato HiDrive oder MinIO).
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3Key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3PathStyle
		if cfg.S3URL != "" {
			o.BaseEndpoint = aws.String(cfg.S3URL)
		}
	})
	return &Store{client: client, bucket: cfg.S3Bucket, endpoint: strings.TrimRight(cfg.S3URL, "/")}, nil
}

// Bucket gibt den Namen des Buckets zurück.
func (s *Store) Bucket() string { return s.bucket }

// Upload lädt eine Datei ins S3 hoch und gibt den Link zurück.
func (s *Store) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	if s.endpoint == "" {
		return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key), nil
}

// List gibt alle Objekte unter prefix zurück, neueste zuerst.
func (s *Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			o := Object{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				o.LastModified = *obj.LastModified
			}
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

// Delete entfernt ein Objekt.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Rotate behält unter prefix die keep neuesten Objekte und löscht den Rest.
// Gibt die gelöschten Keys zurück; Löschfehler brechen nicht ab.
func (s *Store) Rotate(ctx context.Context, prefix string, keep int) ([]string, error) {
	objects, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(objects) <= keep {
		return nil, nil
	}
	var deleted []string
	var errs []error
	for _, obj := range objects[keep:] {
		if err := s.Delete(ctx, obj.Key); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted = append(deleted, obj.Key)
	}
	return deleted, errors.Join(errs...)
}
