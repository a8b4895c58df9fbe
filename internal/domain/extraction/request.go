package extraction

// VideoMetadata describes the source video as reported by the probing
// capability. Planning treats it as read-only input.
type VideoMetadata struct {
	Duration  float64 `json:"duration"` // seconds
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate"` // native frames per second
	Codec     string  `json:"codec,omitempty"`
	Bitrate   int64   `json:"bitrate,omitempty"` // bits per second, 0 when unknown
}

// FrameExtractionRequest is the unit of validation and planning.
//
// Quality is a pointer so that "not provided" (defaulted to DefaultQuality)
// and "explicitly zero" (rejected as out of range) stay distinguishable.
type FrameExtractionRequest struct {
	VideoPath       string
	OutputDirectory string
	Strategy        Strategy
	Quality         *float64
}

// ResolvedQuality returns the requested quality or the default when none was
// given. It does not validate.
func (r FrameExtractionRequest) ResolvedQuality() float64 {
	if r.Quality == nil {
		return DefaultQuality
	}
	return *r.Quality
}

// VideoFile describes a candidate import, usually straight from a media
// picker. Size and MimeType may be unknown (zero / empty) on some sources.
type VideoFile struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Size     int64  `json:"size,omitempty"` // bytes
	MimeType string `json:"mime_type,omitempty"`
}
