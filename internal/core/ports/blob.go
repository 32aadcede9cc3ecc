package ports

import "context"

// BlobStore archives report snapshots.
type BlobStore interface {
	PutJSON(ctx context.Context, key string, data []byte) (location string, err error)
}
