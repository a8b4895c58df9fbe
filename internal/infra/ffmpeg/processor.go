package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/port"
)

// Processor drives the ffmpeg and ffprobe binaries. A Processor owns at most
// one running extraction; Cancel aborts that run and nothing else, so every
// concurrent worker gets its own instance.
type Processor struct {
	ffmpegBin  string
	ffprobeBin string
	format     string
	logger     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewProcessor(ffmpegBin, ffprobeBin, format string, logger *zap.Logger) *Processor {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	if format == "" {
		format = "jpg"
	}
	return &Processor{
		ffmpegBin:  ffmpegBin,
		ffprobeBin: ffprobeBin,
		format:     format,
		logger:     logger,
	}
}

func (p *Processor) ExtractFrames(ctx context.Context, spec port.ExtractionSpec) (*port.ExtractionOutput, error) {
	if _, err := os.Stat(spec.VideoPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", port.ErrVideoNotFound, spec.VideoPath)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", port.ErrProcessingFailed, spec.VideoPath, err)
	}
	if err := os.MkdirAll(spec.OutputDirectory, 0755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", port.ErrProcessingFailed, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.setCancel(cancel)
	defer p.clearCancel()

	start := time.Now()
	framePattern := filepath.Join(spec.OutputDirectory, "frame_%06d."+p.format)
	cmd := exec.CommandContext(runCtx, p.ffmpegBin,
		buildExtractArgs(spec.VideoPath, framePattern, spec.FrameRate, spec.Quality)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", port.ErrCancelled, runCtx.Err())
		}
		return nil, classifyToolError(err, output)
	}

	frames, err := collectFramePaths(spec.OutputDirectory, p.format)
	if err != nil {
		return nil, fmt.Errorf("%w: collect frames: %v", port.ErrProcessingFailed, err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no frames", port.ErrProcessingFailed)
	}

	var totalBytes int64
	for _, frame := range frames {
		if info, err := os.Stat(frame); err == nil {
			totalBytes += info.Size()
		}
	}

	elapsed := time.Since(start)
	p.logger.Info("frames extracted",
		zap.Int("count", len(frames)),
		zap.Float64("fps", spec.FrameRate),
		zap.Int64("bytes", totalBytes),
		zap.Duration("elapsed", elapsed),
	)

	return &port.ExtractionOutput{
		OutputPaths:    frames,
		FrameCount:     len(frames),
		BytesWritten:   totalBytes,
		ProcessingTime: elapsed,
	}, nil
}

// Cancel aborts the extraction currently running on this processor. Calling
// it with nothing in flight is a no-op.
func (p *Processor) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Processor) setCancel(cancel context.CancelFunc) {
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
}

func (p *Processor) clearCancel() {
	p.mu.Lock()
	p.cancel = nil
	p.mu.Unlock()
}

func buildExtractArgs(videoPath, framePattern string, fps, quality float64) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vf", "fps=" + strconv.FormatFloat(fps, 'f', -1, 64),
		"-q:v", strconv.FormatFloat(quality, 'f', -1, 64),
		"-y",
		framePattern,
	}
}

// collectFramePaths globs the produced frames and sorts them. The zero
// padded numbering makes lexical order equal to extraction order.
func collectFramePaths(dir, format string) ([]string, error) {
	frames, err := filepath.Glob(filepath.Join(dir, "frame_*."+format))
	if err != nil {
		return nil, err
	}
	sort.Strings(frames)
	return frames, nil
}

// classifyToolError folds ffmpeg/ffprobe stderr onto the port sentinels so
// the orchestrator can tell a broken container from a broken toolchain.
func classifyToolError(err error, output []byte) error {
	msg := strings.TrimSpace(string(output))
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid data found"),
		strings.Contains(lower, "moov atom not found"),
		strings.Contains(lower, "unknown format"),
		strings.Contains(lower, "decoder not found"):
		return fmt.Errorf("%w: %s", port.ErrUnsupportedFormat, msg)
	case strings.Contains(lower, "no such file or directory"):
		return fmt.Errorf("%w: %s", port.ErrVideoNotFound, msg)
	default:
		return fmt.Errorf("%w: %v: %s", port.ErrProcessingFailed, err, msg)
	}
}
