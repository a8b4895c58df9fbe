package entity

import (
	"github.com/google/uuid"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

// ExtractionRequestMessage is the inbound message from the extraction
// request queue. Quality stays a pointer so an omitted value and an explicit
// zero remain distinguishable, exactly as in the HTTP API.
type ExtractionRequestMessage struct {
	JobID    uuid.UUID           `json:"job_id"`
	VideoKey string              `json:"video_key"`
	Strategy extraction.Strategy `json:"strategy"`
	Quality  *float64            `json:"quality,omitempty"`
	Archive  bool                `json:"archive"`
}

// ExtractionStatusMessage is the outbound message published to the status
// queue after every terminal state and after each attempt starts.
type ExtractionStatusMessage struct {
	JobID            uuid.UUID `json:"job_id"`
	Status           JobStatus `json:"status"`
	VideoKey         string    `json:"video_key"`
	ArchiveKey       string    `json:"archive_key,omitempty"`
	FrameCount       int       `json:"frame_count,omitempty"`
	StorageBytes     int64     `json:"storage_bytes,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms,omitempty"`
	ErrorCode        string    `json:"error_code,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	Attempt          int       `json:"attempt"`
	MaxAttempts      int       `json:"max_attempts"`
}

// StatusFromJob snapshots a job into its outbound status message.
func StatusFromJob(j *ExtractionJob, processingTimeMs int64) ExtractionStatusMessage {
	return ExtractionStatusMessage{
		JobID:            j.ID,
		Status:           j.Status,
		VideoKey:         j.VideoKey,
		ArchiveKey:       j.ArchiveKey,
		FrameCount:       j.FrameCount,
		StorageBytes:     j.StorageBytes,
		ProcessingTimeMs: processingTimeMs,
		ErrorCode:        string(j.FailureCode),
		ErrorMessage:     j.ErrorMessage,
		Attempt:          j.Attempt,
		MaxAttempts:      j.MaxAttempts,
	}
}
