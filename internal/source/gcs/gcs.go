// Package gcs reads and writes a transactions CSV stored as a Cloud Storage
// object.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"finboard/internal/core"
	"finboard/internal/source"
)

var (
	_ source.TransactionFetcher = (*Object)(nil)
	_ source.SnapshotWriter     = (*Object)(nil)
)

const uploadTimeout = 2 * time.Minute

// objectIO is the part of *storage.ObjectHandle the adapter needs.
type objectIO interface {
	NewReader(ctx context.Context) (io.ReadCloser, error)
	NewWriter(ctx context.Context) io.WriteCloser
}

type handle struct{ obj *storage.ObjectHandle }

func (h handle) NewReader(ctx context.Context) (io.ReadCloser, error) {
	return h.obj.NewReader(ctx)
}

func (h handle) NewWriter(ctx context.Context) io.WriteCloser {
	w := h.obj.NewWriter(ctx)
	w.ContentType = "text/csv"
	return w
}

// Object is a CSV object in a bucket.
type Object struct {
	client *storage.Client
	io     objectIO
	uri    string
}

// New opens bucket/object with application default credentials.
func New(ctx context.Context, bucket, object string) (*Object, error) {
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET or GCS_OBJECT")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Object{
		client: client,
		io:     handle{client.Bucket(bucket).Object(object)},
		uri:    URI(bucket, object),
	}, nil
}

func (o *Object) Close() error {
	if o.client == nil {
		return nil
	}
	return o.client.Close()
}

// FetchTransactions downloads and decodes the CSV.
func (o *Object) FetchTransactions(ctx context.Context) ([]core.RawRecord, error) {
	r, err := o.io.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader %s: %w", o.uri, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object %s: %w", o.uri, err)
	}
	return source.DecodeCSV(bytes.NewReader(data))
}

// SaveSnapshot overwrites the object with records encoded as CSV.
func (o *Object) SaveSnapshot(ctx context.Context, records []core.RawRecord) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	var buf bytes.Buffer
	if err := source.EncodeCSV(&buf, source.Header(records), records); err != nil {
		return "", fmt.Errorf("encode csv: %w", err)
	}
	w := o.io.NewWriter(ctx)
	if _, err := io.Copy(w, &buf); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return o.uri, nil
}

// URI formats a gs:// URI.
func URI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

// ParseURI splits gs://bucket/path/to/object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
