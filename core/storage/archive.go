package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// WorkbookContentType is the MIME type of xlsx workbooks.
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNotFound is returned when no archived workbook matches.
var ErrNotFound = errors.New("no archived workbook found")

// Kind separates uploaded workbooks from generated exports.
type Kind string

const (
	KindImport Kind = "imports"
	KindExport Kind = "exports"
)

// Archive keeps copies of workbooks in a bucket under <entity>/<kind>/<timestamp>.xlsx.
type Archive struct {
	client Client
	bucket string
}

// NewArchive creates an archive over bucket.
func NewArchive(client Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// Bucket returns the archive bucket name.
func (a *Archive) Bucket() string {
	return a.bucket
}

// ObjectKey returns the key under which a workbook of entity taken at t is stored.
func ObjectKey(entity string, kind Kind, t time.Time) string {
	return path.Join(entity, string(kind), t.UTC().Format("20060102T150405.000Z")+".xlsx")
}

// EnsureBucket creates the archive bucket when it does not exist yet.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Put stores data under key.
func (a *Archive) Put(ctx context.Context, key string, data []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: WorkbookContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// Get reads the workbook stored under key. A missing key yields ErrNotFound.
func (a *Archive) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	// Minio opens objects lazily so a missing key surfaces on the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && resp.Code == "NoSuchKey"
}

// List returns the workbook keys of entity and kind in ascending time order.
func (a *Archive) List(ctx context.Context, entity string, kind Kind) ([]string, error) {
	prefix := path.Join(entity, string(kind)) + "/"

	// Cancelling stops the lister goroutine when we return early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".xlsx") {
			keys = append(keys, obj.Key)
		}
	}
	// Minio lists keys in lexical order and timestamps sort lexically
	return keys, nil
}

// Latest returns the key of the most recent workbook of entity and kind.
func (a *Archive) Latest(ctx context.Context, entity string, kind Kind) (string, error) {
	keys, err := a.List(ctx, entity, kind)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("%w for %s/%s", ErrNotFound, entity, kind)
	}
	latest := keys[0]
	for _, k := range keys[1:] {
		if k > latest {
			latest = k
		}
	}
	return latest, nil
}
