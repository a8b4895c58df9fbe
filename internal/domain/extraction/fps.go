package extraction

import "math"

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// CalculateExtractionFPS resolves a sampling strategy against the source
// metadata into the rate handed to the video capability. Every branch
// guarantees a positive, finite result; malformed input fails with
// ErrInvalidArgument instead of producing a degenerate rate.
func CalculateExtractionFPS(strategy Strategy, meta VideoMetadata) (float64, error) {
	switch strategy.Type {
	case StrategyUniform:
		if !isPositiveFinite(strategy.FrameCount) {
			return 0, invalidArgumentf("uniform sampling needs a positive frame count, got %g", strategy.FrameCount)
		}
		if !isPositiveFinite(meta.Duration) {
			return 0, invalidArgumentf("uniform sampling needs a positive video duration, got %g", meta.Duration)
		}
		return strategy.FrameCount / meta.Duration, nil

	case StrategyInterval:
		if !isPositiveFinite(strategy.IntervalSeconds) {
			return 0, invalidArgumentf("interval sampling needs a positive interval, got %g", strategy.IntervalSeconds)
		}
		return 1 / strategy.IntervalSeconds, nil

	case StrategyFrameBased:
		if !isPositiveFinite(strategy.FrameInterval) {
			return 0, invalidArgumentf("frame-based sampling needs a positive frame interval, got %g", strategy.FrameInterval)
		}
		if !isPositiveFinite(meta.FrameRate) {
			return 0, invalidArgumentf("frame-based sampling needs a positive native frame rate, got %g", meta.FrameRate)
		}
		return meta.FrameRate / strategy.FrameInterval, nil

	case StrategyAllFrames:
		if !isPositiveFinite(meta.FrameRate) {
			return 0, invalidArgumentf("all-frames sampling needs a positive native frame rate, got %g", meta.FrameRate)
		}
		return meta.FrameRate, nil

	case StrategyCustomFPS:
		if !isPositiveFinite(strategy.FPS) {
			return 0, invalidArgumentf("custom fps sampling needs a positive rate, got %g", strategy.FPS)
		}
		return strategy.FPS, nil

	default:
		return 0, invalidArgumentf("unknown strategy type %q", string(strategy.Type))
	}
}
