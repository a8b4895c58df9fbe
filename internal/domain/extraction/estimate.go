package extraction

import (
	"math"
	"time"
)

// EstimateFrameStorageMB predicts the on-disk size of one extracted frame in
// megabytes: the uncompressed RGB size scaled by the JPEG compression ratio
// for the given quality, padded by the safety margin.
func EstimateFrameStorageMB(width, height int, quality float64) (float64, error) {
	if width <= 0 || height <= 0 {
		return 0, invalidArgumentf("frame dimensions must be positive, got %dx%d", width, height)
	}
	if math.IsNaN(quality) || math.IsInf(quality, 0) || quality < MinQuality || quality > MaxQuality {
		return 0, invalidArgumentf("quality must be within [%g, %g], got %g", MinQuality, MaxQuality, quality)
	}

	rawBytes := float64(width) * float64(height) * bytesPerPixel
	estimated := rawBytes * compressionRatioFor(quality) * storageSafetyMargin
	return estimated / bytesPerMB, nil
}

// EstimateTotalStorageMB is the per-frame estimate scaled by the frame
// count. Zero frames estimate to zero megabytes.
func EstimateTotalStorageMB(frameCount, width, height int, quality float64) (float64, error) {
	if frameCount < 0 {
		return 0, invalidArgumentf("frame count must not be negative, got %d", frameCount)
	}
	if frameCount == 0 {
		return 0, nil
	}
	perFrame, err := EstimateFrameStorageMB(width, height, quality)
	if err != nil {
		return 0, err
	}
	return float64(frameCount) * perFrame, nil
}

// EstimateProcessingDuration applies the fixed per-frame baseline.
func EstimateProcessingDuration(frameCount int) (time.Duration, error) {
	if frameCount < 0 {
		return 0, invalidArgumentf("frame count must not be negative, got %d", frameCount)
	}
	return time.Duration(frameCount) * processingTimePerFrame, nil
}

// EstimateFrameCount predicts how many frames an extraction at the given
// rate will produce, rounding to the nearest whole frame. A zero duration is
// legal and yields zero frames.
func EstimateFrameCount(fps, duration float64) (int, error) {
	if !isPositiveFinite(fps) {
		return 0, invalidArgumentf("fps must be positive and finite, got %g", fps)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return 0, invalidArgumentf("duration must be non-negative and finite, got %g", duration)
	}
	return int(math.Round(fps * duration)), nil
}
