package extraction

import "time"

// Plan is the fully resolved set of extraction parameters plus estimates.
// Building one is pure: the same request and metadata always produce the
// same plan, and the plan is never mutated afterwards.
type Plan struct {
	VideoPath       string
	OutputDirectory string
	Strategy        Strategy
	Quality         float64

	ExtractionFPS       float64
	EstimatedFrameCount int
	EstimatedStorageMB  float64
	EstimatedDuration   time.Duration

	VideoDuration  float64
	VideoFrameRate float64
	VideoWidth     int
	VideoHeight    int
}

// NewPlan resolves a request against probed metadata. It assumes the request
// already passed validation; calculator preconditions surface as
// ErrInvalidArgument when it did not.
func NewPlan(r FrameExtractionRequest, meta VideoMetadata) (*Plan, error) {
	quality := r.ResolvedQuality()

	fps, err := CalculateExtractionFPS(r.Strategy, meta)
	if err != nil {
		return nil, err
	}
	frameCount, err := EstimateFrameCount(fps, meta.Duration)
	if err != nil {
		return nil, err
	}
	storageMB, err := EstimateTotalStorageMB(frameCount, meta.Width, meta.Height, quality)
	if err != nil {
		return nil, err
	}
	duration, err := EstimateProcessingDuration(frameCount)
	if err != nil {
		return nil, err
	}

	return &Plan{
		VideoPath:           r.VideoPath,
		OutputDirectory:     r.OutputDirectory,
		Strategy:            r.Strategy,
		Quality:             quality,
		ExtractionFPS:       fps,
		EstimatedFrameCount: frameCount,
		EstimatedStorageMB:  storageMB,
		EstimatedDuration:   duration,
		VideoDuration:       meta.Duration,
		VideoFrameRate:      meta.FrameRate,
		VideoWidth:          meta.Width,
		VideoHeight:         meta.Height,
	}, nil
}
