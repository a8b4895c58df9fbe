package extraction

import (
	"math"
	"path/filepath"
	"strings"
	"time"
)

// Numeric bounds for strategy parameters and quality. Validation enforces
// these; the calculators assume them and fail hard when they are violated.
const (
	MinFrameCount = 1
	MaxFrameCount = 10000

	MinIntervalSeconds = 0.001
	MaxIntervalSeconds = 3600.0

	MinFrameInterval = 1
	MaxFrameInterval = 1000

	MinCustomFPS = 0.001
	MaxCustomFPS = 120.0

	// Quality follows the ffmpeg qscale convention: 1 is the best quality
	// (largest file), 31 the worst.
	MinQuality     = 1.0
	MaxQuality     = 31.0
	DefaultQuality = 2.0
)

const (
	// StorageQuotaMB caps the estimated output size of a single extraction.
	// Plans above it are rejected before any frame is produced.
	StorageQuotaMB = 5000.0

	// LargeFileThresholdBytes marks imported videos that deserve a warning.
	// A file exactly at the threshold passes without one.
	LargeFileThresholdBytes = 500 * 1024 * 1024

	// storageSafetyMargin biases storage estimates upward so that real
	// usage rarely exceeds the estimate.
	storageSafetyMargin = 1.5

	// processingTimePerFrame is a crude device-independent baseline, not a
	// performance model.
	processingTimePerFrame = 100 * time.Millisecond

	bytesPerPixel = 3
	bytesPerMB    = 1024 * 1024
)

// compressionRatios approximates JPEG output size as a fraction of the
// uncompressed frame, indexed by qscale-1. Lower quality numbers compress
// less, so the sequence is monotonically non-increasing.
var compressionRatios = [31]float64{
	0.300, 0.260, 0.228, 0.203, 0.183, 0.167, 0.153, 0.141,
	0.131, 0.122, 0.114, 0.107, 0.101, 0.095, 0.090, 0.085,
	0.081, 0.077, 0.073, 0.070, 0.067, 0.064, 0.061, 0.058,
	0.056, 0.054, 0.052, 0.050, 0.048, 0.046, 0.044,
}

// compressionRatioFor rounds a validated quality value to the nearest table
// row. The clamp only guards the rounding itself; out-of-range quality must
// be rejected before this lookup runs.
func compressionRatioFor(quality float64) float64 {
	q := int(math.Round(quality))
	if q < MinQuality {
		q = MinQuality
	}
	if q > MaxQuality {
		q = MaxQuality
	}
	return compressionRatios[q-1]
}

var supportedVideoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".m4v":  {},
	".avi":  {},
	".mkv":  {},
	".webm": {},
	".3gp":  {},
}

var supportedVideoMimeTypes = map[string]struct{}{
	"video/mp4":        {},
	"video/quicktime":  {},
	"video/x-m4v":      {},
	"video/x-msvideo":  {},
	"video/x-matroska": {},
	"video/webm":       {},
	"video/3gpp":       {},
}

// IsSupportedVideoExtension reports whether the file name carries one of the
// container extensions the video capability accepts. Matching is
// case-insensitive.
func IsSupportedVideoExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := supportedVideoExtensions[ext]
	return ok
}

func isSupportedVideoMimeType(mimeType string) bool {
	_, ok := supportedVideoMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}
