package artifact

import (
	"bytes"
	"context"

	"github.com/minio/minio-go/v7"
)

// MinioMirror implements Mirror over a MinIO bucket, adapted from the
// teacher's IMinioClient (FileAdd/FileRm) down to the two operations the
// artifact store needs.
type MinioMirror struct {
	cl     *minio.Client
	bucket string
}

func NewMinioMirror(cl *minio.Client, bucket string) *MinioMirror {
	return &MinioMirror{cl: cl, bucket: bucket}
}

func (m *MinioMirror) Put(ctx context.Context, key string, data []byte) error {
	_, err := m.cl.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

func (m *MinioMirror) Remove(ctx context.Context, key string) error {
	return m.cl.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

var _ Mirror = (*MinioMirror)(nil)
