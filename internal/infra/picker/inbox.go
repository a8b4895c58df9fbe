package picker

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

// InboxPicker stands in for an interactive media picker on headless hosts:
// it selects the most recently modified supported video in a watched
// directory. An empty inbox is the analogue of the user dismissing the
// picker, so it yields a nil file rather than an error.
type InboxPicker struct {
	dir    string
	logger *zap.Logger
}

func NewInboxPicker(dir string, logger *zap.Logger) *InboxPicker {
	return &InboxPicker{dir: dir, logger: logger}
}

func (p *InboxPicker) PickVideo(ctx context.Context) (*extraction.VideoFile, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox %s: %w", p.dir, err)
	}

	var picked os.FileInfo
	var pickedPath string
	for _, entry := range entries {
		if entry.IsDir() || !extraction.IsSupportedVideoExtension(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if picked == nil || info.ModTime().After(picked.ModTime()) {
			picked = info
			pickedPath = filepath.Join(p.dir, entry.Name())
		}
	}

	if picked == nil {
		p.logger.Info("inbox empty, nothing to import", zap.String("dir", p.dir))
		return nil, nil
	}

	abs, err := filepath.Abs(pickedPath)
	if err != nil {
		abs = pickedPath
	}

	return &extraction.VideoFile{
		URI:      "file://" + abs,
		Name:     picked.Name(),
		Size:     picked.Size(),
		MimeType: mime.TypeByExtension(strings.ToLower(filepath.Ext(picked.Name()))),
	}, nil
}

// PickVideoFromCamera never produces anything here: the inbox has no capture
// hardware behind it. The permission gate reports the camera unavailable on
// such hosts, so this is only reached when an override forces it through.
func (p *InboxPicker) PickVideoFromCamera(ctx context.Context) (*extraction.VideoFile, error) {
	p.logger.Warn("camera capture requested on a host without a camera")
	return nil, nil
}
