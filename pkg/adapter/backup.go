package adapter

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Backup is the destination for database backup copies.
type Backup interface {
	// Put returns a writer for the backup object identified by key.
	Put(ctx context.Context, key string) (io.WriteCloser, error)
}

// gcsBackup writes backups to a Cloud Storage bucket.
type gcsBackup struct {
	bucketName string
	client     *storage.Client
}

// NewGCSBackup creates a backup target on Cloud Storage.
func NewGCSBackup(ctx context.Context, bucketName string) (Backup, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &gcsBackup{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *gcsBackup) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(key)
	return obj.NewWriter(ctx), nil
}

// dirBackup writes backups to a local directory.
type dirBackup struct {
	dir string
}

// NewDirBackup creates a backup target on the local filesystem.
func NewDirBackup(dir string) (Backup, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create backup directory", goerr.V("dir", dir))
	}
	return &dirBackup{dir: dir}, nil
}

func (d *dirBackup) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	path := filepath.Join(d.dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create backup subdirectory", goerr.V("path", path))
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create backup file", goerr.V("path", path))
	}
	return f, nil
}
