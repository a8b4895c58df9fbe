package port

import (
	"context"
	"errors"
	"time"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

// Capability failures the orchestrator maps onto its error taxonomy. Adapters
// wrap these with %w so errors.Is keeps working through the chain.
var (
	ErrVideoNotFound     = errors.New("video not found")
	ErrUnsupportedFormat = errors.New("unsupported video format")
	ErrProcessingFailed  = errors.New("video processing failed")
	ErrCancelled         = errors.New("extraction cancelled")
)

// ExtractionSpec is everything the video capability needs to run one
// extraction. FrameRate and Quality come from a resolved plan, never raw
// user input.
type ExtractionSpec struct {
	VideoPath       string
	OutputDirectory string
	FrameRate       float64
	Quality         float64
}

// ExtractionOutput reports what actually happened. OutputPaths keeps the
// capability's production order; BytesWritten is the summed size of the
// produced frames.
type ExtractionOutput struct {
	OutputPaths    []string
	FrameCount     int
	BytesWritten   int64
	ProcessingTime time.Duration
}

// VideoProcessor is the media toolchain boundary. Cancel aborts the
// extraction currently running on this processor, if any; the aborted call
// returns ErrCancelled.
type VideoProcessor interface {
	GetMetadata(ctx context.Context, videoPath string) (*extraction.VideoMetadata, error)
	ExtractFrames(ctx context.Context, spec ExtractionSpec) (*ExtractionOutput, error)
	Cancel()
}
