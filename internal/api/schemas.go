package api

import (
	"github.com/framelift/extraction-service/internal/domain/extraction"
)

// ExtractionRequestBody is the wire form of an extraction request. Strategy
// decodes straight into the domain type, whose float64 parameters keep
// fractional or non-finite input intact for validation to reject.
type ExtractionRequestBody struct {
	VideoPath       string              `json:"video_path"`
	OutputDirectory string              `json:"output_directory"`
	Strategy        extraction.Strategy `json:"strategy"`
	Quality         *float64            `json:"quality,omitempty"`
}

func (b ExtractionRequestBody) ToRequest() extraction.FrameExtractionRequest {
	return extraction.FrameExtractionRequest{
		VideoPath:       b.VideoPath,
		OutputDirectory: b.OutputDirectory,
		Strategy:        b.Strategy,
		Quality:         b.Quality,
	}
}

type VideoDetailsResponse struct {
	DurationS float64 `json:"duration_s"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate"`
}

type PlanResponse struct {
	VideoPath           string               `json:"video_path"`
	OutputDirectory     string               `json:"output_directory"`
	Strategy            extraction.Strategy  `json:"strategy"`
	Quality             float64              `json:"quality"`
	ExtractionFPS       float64              `json:"extraction_fps"`
	EstimatedFrameCount int                  `json:"estimated_frame_count"`
	EstimatedStorageMB  float64              `json:"estimated_storage_mb"`
	EstimatedDurationMs int64                `json:"estimated_duration_ms"`
	Video               VideoDetailsResponse `json:"video"`
}

type ResultResponse struct {
	Frames           []extraction.FrameInfo `json:"frames"`
	TotalFrames      int                    `json:"total_frames"`
	ActualStorageMB  float64                `json:"actual_storage_mb"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	Strategy         extraction.Strategy    `json:"strategy"`
}

type ImportRequestBody struct {
	// Source is "library" (default) or "camera".
	Source string `json:"source,omitempty"`
}

type ImportResponse struct {
	Cancelled bool                         `json:"cancelled"`
	File      *extraction.VideoFile        `json:"file,omitempty"`
	Warnings  []extraction.ValidationError `json:"warnings,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	UptimeS int64  `json:"uptime_s"`
}

type ErrorResponse struct {
	Error      string                       `json:"error"`
	Code       string                       `json:"code,omitempty"`
	Violations []extraction.ValidationError `json:"violations,omitempty"`
}

func PlanToResponse(p *extraction.Plan) PlanResponse {
	return PlanResponse{
		VideoPath:           p.VideoPath,
		OutputDirectory:     p.OutputDirectory,
		Strategy:            p.Strategy,
		Quality:             p.Quality,
		ExtractionFPS:       p.ExtractionFPS,
		EstimatedFrameCount: p.EstimatedFrameCount,
		EstimatedStorageMB:  p.EstimatedStorageMB,
		EstimatedDurationMs: p.EstimatedDuration.Milliseconds(),
		Video: VideoDetailsResponse{
			DurationS: p.VideoDuration,
			Width:     p.VideoWidth,
			Height:    p.VideoHeight,
			FrameRate: p.VideoFrameRate,
		},
	}
}

func ResultToResponse(res *extraction.ExtractionResult) ResultResponse {
	return ResultResponse{
		Frames:           res.Frames,
		TotalFrames:      res.TotalFrames,
		ActualStorageMB:  res.ActualStorageMB,
		ProcessingTimeMs: res.ProcessingTime.Milliseconds(),
		Strategy:         res.Strategy,
	}
}
