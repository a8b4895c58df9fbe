package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

func TestNewExtractionJobAssignsIDWhenMissing(t *testing.T) {
	job := NewExtractionJob(uuid.Nil, "u/video.mp4", extraction.UniformSampling(10), 3)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 0, job.Attempt)
	assert.Equal(t, 3, job.MaxAttempts)

	id := uuid.New()
	job = NewExtractionJob(id, "u/video.mp4", extraction.AllFrames(), 3)
	assert.Equal(t, id, job.ID, "producer-assigned ids must be kept")
}

func TestExtractionJobLifecycle(t *testing.T) {
	job := NewExtractionJob(uuid.New(), "u/video.mp4", extraction.UniformSampling(10), 2)

	job.MarkProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.Equal(t, 1, job.Attempt)
	assert.True(t, job.CanRetry())

	job.MarkFailed(extraction.FailureProcessing, "ffmpeg exploded")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, extraction.FailureProcessing, job.FailureCode)

	job.MarkProcessing()
	assert.Equal(t, 2, job.Attempt)
	assert.False(t, job.CanRetry(), "attempts are bounded by MaxAttempts")

	job.MarkCompleted("frames_x.zip", &extraction.ExtractionResult{
		TotalFrames:     10,
		ActualStorageMB: 1.0,
	})
	require.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, "frames_x.zip", job.ArchiveKey)
	assert.Equal(t, 10, job.FrameCount)
	assert.Equal(t, int64(1024*1024), job.StorageBytes)
	assert.Empty(t, job.ErrorMessage, "completion clears earlier failure state")
	assert.NotNil(t, job.CompletedAt)
}

func TestStatusFromJobSnapshotsEveryField(t *testing.T) {
	job := NewExtractionJob(uuid.New(), "u/video.mp4", extraction.UniformSampling(10), 3)
	job.MarkProcessing()
	job.MarkFailed(extraction.FailureVideoNotFound, "no such object")

	status := StatusFromJob(job, 250)

	assert.Equal(t, job.ID, status.JobID)
	assert.Equal(t, JobStatusFailed, status.Status)
	assert.Equal(t, "u/video.mp4", status.VideoKey)
	assert.Equal(t, string(extraction.FailureVideoNotFound), status.ErrorCode)
	assert.Equal(t, "no such object", status.ErrorMessage)
	assert.Equal(t, 1, status.Attempt)
	assert.Equal(t, 3, status.MaxAttempts)
	assert.Equal(t, int64(250), status.ProcessingTimeMs)
}
