// Package storage uploads chart images to Google Cloud Storage.
package storage

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/tradesync/pkg/helpers"
)

// ChartStore writes chart objects into a single bucket.
type ChartStore struct {
	client *storage.Client
	bucket string
}

func NewChartStore(client *storage.Client, bucket string) *ChartStore {
	return &ChartStore{client: client, bucket: bucket}
}

func (s *ChartStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return helpers.UploadObject(ctx, s.client, s.bucket, objectPath, contentType, r)
}
