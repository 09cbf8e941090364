package restbq

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/xerrors"
)

// archiver keeps the raw payload of a source before it is loaded.
type archiver interface {
	archive(ctx context.Context, src Source, body []byte) (string, error)
}

// gcsArchiver builds its client on the first archive.
type gcsArchiver struct {
	bucket  string
	storage *storage.Client
}

func newGCSArchiver(bucket string) *gcsArchiver {
	return &gcsArchiver{bucket: bucket}
}

func (a *gcsArchiver) archive(ctx context.Context, src Source, body []byte) (string, error) {
	if a.storage == nil {
		s, err := storage.NewClient(ctx)
		if err != nil {
			return "", xerrors.Errorf("failed to build storage client for %s: %w", a.bucket, err)
		}
		a.storage = s
	}

	name := archiveObjectName(ctx, src)

	w := a.storage.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(body); err != nil {
		w.Close()
		return "", xerrors.Errorf("failed to write gs://%s/%s: %w", a.bucket, name, err)
	}

	if err := w.Close(); err != nil {
		return "", xerrors.Errorf("failed to close gs://%s/%s: %w", a.bucket, name, err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, name), nil
}

func (a *gcsArchiver) Close() error {
	if a.storage == nil {
		return nil
	}
	return a.storage.Close()
}

// archiveObjectName returns "<table>/<run start>.json". Objects of one run share the timestamp.
func archiveObjectName(ctx context.Context, src Source) string {
	t, ok := startedTimeFrom(ctx)
	if !ok {
		t = time.Now()
	}

	return fmt.Sprintf("%s/%s.json", src.Table, t.UTC().Format(time.RFC3339))
}
