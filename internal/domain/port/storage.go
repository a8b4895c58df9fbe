package port

import (
	"context"
	"io"
)

type ObjectStore interface {
	FetchVideo(ctx context.Context, objectKey string, destPath string) error
	StoreArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error
}
