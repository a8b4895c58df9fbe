package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/extraction"
	"github.com/framelift/extraction-service/internal/domain/port"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	Duration     string `json:"duration"`
	BitRate      string `json:"bit_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

func (p *Processor) GetMetadata(ctx context.Context, videoPath string) (*extraction.VideoMetadata, error) {
	if _, err := os.Stat(videoPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", port.ErrVideoNotFound, videoPath)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", port.ErrProcessingFailed, videoPath, err)
	}

	cmd := exec.CommandContext(ctx, p.ffprobeBin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)
	raw, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", port.ErrCancelled, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, classifyToolError(err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("%w: ffprobe: %v", port.ErrProcessingFailed, err)
	}

	meta, err := parseProbeOutput(raw)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("video probed",
		zap.String("path", videoPath),
		zap.Float64("duration", meta.Duration),
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
		zap.Float64("frame_rate", meta.FrameRate),
		zap.String("codec", meta.Codec),
	)
	return meta, nil
}

// parseProbeOutput reads the ffprobe JSON document. Duration and bitrate
// prefer the container values and fall back to the stream ones; frame rate
// prefers avg_frame_rate, which reflects actual content for VFR files.
func parseProbeOutput(raw []byte) (*extraction.VideoMetadata, error) {
	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: parse ffprobe output: %v", port.ErrProcessingFailed, err)
	}

	var video *probeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "video" {
			video = &out.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, fmt.Errorf("%w: no video stream", port.ErrUnsupportedFormat)
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, fmt.Errorf("%w: video stream reports no dimensions", port.ErrUnsupportedFormat)
	}

	duration := parseFloatField(out.Format.Duration)
	if duration == 0 {
		duration = parseFloatField(video.Duration)
	}

	frameRate := parseRational(video.AvgFrameRate)
	if frameRate == 0 {
		frameRate = parseRational(video.RFrameRate)
	}

	bitrate := int64(parseFloatField(out.Format.BitRate))
	if bitrate == 0 {
		bitrate = int64(parseFloatField(video.BitRate))
	}

	return &extraction.VideoMetadata{
		Duration:  duration,
		Width:     video.Width,
		Height:    video.Height,
		FrameRate: frameRate,
		Codec:     video.CodecName,
		Bitrate:   bitrate,
	}, nil
}

// parseRational converts ffprobe rate strings like "30000/1001" or "25" into
// a float. Zero denominators and garbage come back as 0.
func parseRational(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if num, den, found := strings.Cut(s, "/"); found {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloatField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
