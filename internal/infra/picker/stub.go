package picker

import (
	"context"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

// StubPicker returns a preconfigured file on every pick. Useful for local
// development and for exercising the import flow without a real inbox.
type StubPicker struct {
	File       *extraction.VideoFile
	CameraFile *extraction.VideoFile
}

func (p *StubPicker) PickVideo(ctx context.Context) (*extraction.VideoFile, error) {
	return p.File, nil
}

func (p *StubPicker) PickVideoFromCamera(ctx context.Context) (*extraction.VideoFile, error) {
	return p.CameraFile, nil
}
