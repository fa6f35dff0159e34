// Package backup archives story documents to S3-compatible object
// storage before the repair tool rewrites them.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds object storage connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Archiver writes pre-repair snapshots of story documents to a bucket.
type Archiver struct {
	client *minio.Client
	bucket string
}

// New connects to the object store and creates the bucket if needed.
func New(ctx context.Context, cfg Config) (*Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Archiver{client: client, bucket: cfg.Bucket}, nil
}

// Archive stores a JSON snapshot of the document under
// stories/<id>-<timestamp>.json and returns the object name.
func (a *Archiver) Archive(ctx context.Context, storyID string, doc any) (string, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal story %s: %w", storyID, err)
	}

	objectName := fmt.Sprintf("stories/%s-%s.json", storyID, time.Now().UTC().Format("20060102T150405Z"))
	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", objectName, err)
	}
	return objectName, nil
}
