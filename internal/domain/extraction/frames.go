package extraction

import "time"

// FrameInfo locates one extracted frame on the video timeline. FrameNumber
// is zero-based; Timestamp is seconds from the start of the video.
type FrameInfo struct {
	FrameNumber int     `json:"frame_number"`
	Timestamp   float64 `json:"timestamp"`
	Path        string  `json:"path"`
}

// ExtractionResult is the terminal payload of a successful extraction.
type ExtractionResult struct {
	Frames          []FrameInfo
	TotalFrames     int
	ActualStorageMB float64
	ProcessingTime  time.Duration
	Strategy        Strategy
}

// FrameTimestamp places the i-th extracted frame on the video timeline.
// At a rate of fps, frame i was sampled i/fps seconds in.
func FrameTimestamp(frameNumber int, fps float64) (float64, error) {
	if frameNumber < 0 {
		return 0, invalidArgumentf("frame number must not be negative, got %d", frameNumber)
	}
	if !isPositiveFinite(fps) {
		return 0, invalidArgumentf("fps must be positive and finite, got %g", fps)
	}
	return float64(frameNumber) / fps, nil
}

// GenerateFrameInfos pairs each output path with its frame number and
// timestamp, preserving the capability's path order. The i-th path always
// becomes frame i.
func GenerateFrameInfos(paths []string, fps float64) ([]FrameInfo, error) {
	if !isPositiveFinite(fps) {
		return nil, invalidArgumentf("fps must be positive and finite, got %g", fps)
	}

	infos := make([]FrameInfo, 0, len(paths))
	for i, path := range paths {
		ts, err := FrameTimestamp(i, fps)
		if err != nil {
			return nil, err
		}
		infos = append(infos, FrameInfo{
			FrameNumber: i,
			Timestamp:   ts,
			Path:        path,
		})
	}
	return infos, nil
}
