package port

import (
	"context"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

// MediaPicker selects a video for import. A nil file with a nil error means
// the selection was abandoned, which is a normal outcome, not a failure.
type MediaPicker interface {
	PickVideo(ctx context.Context) (*extraction.VideoFile, error)
	PickVideoFromCamera(ctx context.Context) (*extraction.VideoFile, error)
}
