package uploads

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MirrorConfig points at an S3 compatible bucket such as Cloudflare R2.
type MirrorConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// BucketMirror copies uploads to object storage.
type BucketMirror struct {
	client      *minio.Client
	bucket      string
	bucketReady atomic.Bool
	logger      *slog.Logger
}

// NewBucketMirror constructs the mirror. The bucket is created on first use.
func NewBucketMirror(cfg MirrorConfig, logger *slog.Logger) (*BucketMirror, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("mirror bucket is required")
	}
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://"),
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init mirror client: %w", err)
	}
	return &BucketMirror{client: client, bucket: cfg.Bucket, logger: logger.With("component", "uploads.mirror")}, nil
}

func (m *BucketMirror) ensureBucket(ctx context.Context) error {
	if m.bucketReady.Load() {
		return nil
	}
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil || !exists {
		err = m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return err
		}
	}
	m.bucketReady.Store(true)
	return nil
}

// Put uploads data under key.
func (m *BucketMirror) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := m.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: len(data) < 5*1024*1024,
	})
	if err != nil {
		return err
	}
	m.logger.Debug("upload mirrored", "key", key, "etag", info.ETag)
	return nil
}

var _ Mirror = (*BucketMirror)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
