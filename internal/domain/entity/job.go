package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// ExtractionJob tracks one queued extraction through the worker. Jobs live
// only for the duration of the message that carries them; the status queue is
// the system of record.
type ExtractionJob struct {
	ID           uuid.UUID
	VideoKey     string
	ArchiveKey   string
	Status       JobStatus
	Strategy     extraction.Strategy
	FrameCount   int
	StorageBytes int64
	Attempt      int
	MaxAttempts  int
	FailureCode  extraction.FailureCode
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// NewExtractionJob builds a pending job for an inbound request. A producer
// that did not assign a job id gets one here so status messages always
// correlate.
func NewExtractionJob(id uuid.UUID, videoKey string, strategy extraction.Strategy, maxAttempts int) *ExtractionJob {
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()
	return &ExtractionJob{
		ID:          id,
		VideoKey:    videoKey,
		Status:      JobStatusPending,
		Strategy:    strategy,
		Attempt:     0,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (j *ExtractionJob) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.Attempt++
	j.UpdatedAt = time.Now().UTC()
}

func (j *ExtractionJob) MarkCompleted(archiveKey string, result *extraction.ExtractionResult) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.ArchiveKey = archiveKey
	j.FrameCount = result.TotalFrames
	j.StorageBytes = int64(result.ActualStorageMB * 1024 * 1024)
	j.FailureCode = ""
	j.ErrorMessage = ""
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *ExtractionJob) MarkFailed(code extraction.FailureCode, errMsg string) {
	j.Status = JobStatusFailed
	j.FailureCode = code
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}

func (j *ExtractionJob) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}
