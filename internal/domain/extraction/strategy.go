package extraction

import "fmt"

// StrategyType discriminates the closed set of sampling strategies.
type StrategyType string

const (
	StrategyUniform    StrategyType = "uniform"
	StrategyInterval   StrategyType = "interval"
	StrategyFrameBased StrategyType = "frame_based"
	StrategyAllFrames  StrategyType = "all_frames"
	StrategyCustomFPS  StrategyType = "custom_fps"
)

// Strategy is a tagged union: Type selects which single parameter field is
// meaningful, the rest stay zero. Parameters are kept as float64 so that
// out-of-domain wire input (fractional counts, NaN, infinities) survives
// decoding and is rejected by validation instead of being silently coerced.
type Strategy struct {
	Type StrategyType `json:"type"`

	// FrameCount is the total number of frames to extract, spread evenly
	// across the video. Used by StrategyUniform.
	FrameCount float64 `json:"frame_count,omitempty"`

	// IntervalSeconds is the spacing between consecutive extracted frames.
	// Used by StrategyInterval.
	IntervalSeconds float64 `json:"interval_seconds,omitempty"`

	// FrameInterval extracts every Nth source frame. Used by
	// StrategyFrameBased.
	FrameInterval float64 `json:"frame_interval,omitempty"`

	// FPS is the exact extraction rate. Used by StrategyCustomFPS.
	FPS float64 `json:"fps,omitempty"`
}

// UniformSampling extracts frameCount frames spread evenly across the video.
func UniformSampling(frameCount int) Strategy {
	return Strategy{Type: StrategyUniform, FrameCount: float64(frameCount)}
}

// IntervalSampling extracts one frame every intervalSeconds.
func IntervalSampling(intervalSeconds float64) Strategy {
	return Strategy{Type: StrategyInterval, IntervalSeconds: intervalSeconds}
}

// FrameBasedSampling extracts every Nth frame of the source.
func FrameBasedSampling(frameInterval int) Strategy {
	return Strategy{Type: StrategyFrameBased, FrameInterval: float64(frameInterval)}
}

// AllFrames extracts every source frame at the native frame rate.
func AllFrames() Strategy {
	return Strategy{Type: StrategyAllFrames}
}

// CustomFPS extracts frames at an explicit rate.
func CustomFPS(fps float64) Strategy {
	return Strategy{Type: StrategyCustomFPS, FPS: fps}
}

// String renders the strategy and its active parameter for logs.
func (s Strategy) String() string {
	switch s.Type {
	case StrategyUniform:
		return fmt.Sprintf("uniform(frame_count=%g)", s.FrameCount)
	case StrategyInterval:
		return fmt.Sprintf("interval(interval_seconds=%g)", s.IntervalSeconds)
	case StrategyFrameBased:
		return fmt.Sprintf("frame_based(frame_interval=%g)", s.FrameInterval)
	case StrategyAllFrames:
		return "all_frames"
	case StrategyCustomFPS:
		return fmt.Sprintf("custom_fps(fps=%g)", s.FPS)
	default:
		return fmt.Sprintf("unknown(%q)", string(s.Type))
	}
}
