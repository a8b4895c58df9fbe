package port

import (
	"context"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

// Archiver bundles extracted frames into a single downloadable artifact.
type Archiver interface {
	CreateArchive(ctx context.Context, frames []extraction.FrameInfo, outputPath string) error
}
