package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/entity"
	"github.com/framelift/extraction-service/internal/domain/extraction"
	"github.com/framelift/extraction-service/internal/domain/port"
)

type fakeStore struct {
	fetchErr   error
	storeErr   error
	fetchCalls int
	storedKey  string
	storedSize int64
}

func (s *fakeStore) FetchVideo(ctx context.Context, objectKey, destPath string) error {
	s.fetchCalls++
	if s.fetchErr != nil {
		return s.fetchErr
	}
	return os.WriteFile(destPath, []byte("video"), 0644)
}

func (s *fakeStore) StoreArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	s.storedKey = objectKey
	s.storedSize = size
	_, err := io.Copy(io.Discard, reader)
	return err
}

type fakeArchiver struct {
	err   error
	calls int
}

func (a *fakeArchiver) CreateArchive(ctx context.Context, frames []extraction.FrameInfo, outputPath string) error {
	a.calls++
	if a.err != nil {
		return a.err
	}
	return os.WriteFile(outputPath, []byte("zip-content"), 0644)
}

type capturingPublisher struct {
	messages [][]byte
}

func (p *capturingPublisher) PublishStatus(ctx context.Context, msg []byte) error {
	p.messages = append(p.messages, msg)
	return nil
}

func (p *capturingPublisher) statuses(t *testing.T) []entity.ExtractionStatusMessage {
	t.Helper()
	out := make([]entity.ExtractionStatusMessage, 0, len(p.messages))
	for _, raw := range p.messages {
		var m entity.ExtractionStatusMessage
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

type capturingDLQ struct {
	messages [][]byte
	reasons  []string
}

func (d *capturingDLQ) PublishToDLQ(ctx context.Context, msg []byte, reason string) error {
	d.messages = append(d.messages, msg)
	d.reasons = append(d.reasons, reason)
	return nil
}

func newTestPipeline(t *testing.T, proc *fakeProcessor, store *fakeStore, archiver *fakeArchiver, pub *capturingPublisher, dlq *capturingDLQ, maxRetries int) *ProcessExtractionUseCase {
	t.Helper()
	return NewProcessExtractionUseCase(
		NewExtractor(proc, zap.NewNop()),
		store,
		archiver,
		pub,
		dlq,
		zap.NewNop(),
		ProcessExtractionConfig{
			TempDir:        t.TempDir(),
			MaxRetries:     maxRetries,
			RetryBaseDelay: time.Millisecond,
		},
	)
}

func requestMessage(t *testing.T, jobID uuid.UUID, archive bool) []byte {
	t.Helper()
	raw, err := json.Marshal(entity.ExtractionRequestMessage{
		JobID:    jobID,
		VideoKey: "uploads/clip.mp4",
		Strategy: extraction.UniformSampling(2),
		Archive:  archive,
	})
	require.NoError(t, err)
	return raw
}

func TestProcessExtractionHappyPath(t *testing.T) {
	proc := &fakeProcessor{
		meta: fullHDMeta(),
		output: &port.ExtractionOutput{
			OutputPaths:    []string{"frame_000001.jpg", "frame_000002.jpg"},
			FrameCount:     2,
			BytesWritten:   2 << 20,
			ProcessingTime: 300 * time.Millisecond,
		},
	}
	store := &fakeStore{}
	archiver := &fakeArchiver{}
	pub := &capturingPublisher{}
	dlq := &capturingDLQ{}
	uc := newTestPipeline(t, proc, store, archiver, pub, dlq, 3)

	jobID := uuid.New()
	err := uc.Execute(context.Background(), requestMessage(t, jobID, true))
	require.NoError(t, err)

	assert.Empty(t, dlq.messages)
	assert.Equal(t, 1, store.fetchCalls)
	assert.Equal(t, 1, archiver.calls)
	assert.Equal(t, fmt.Sprintf("frames_%s.zip", jobID), store.storedKey)

	statuses := pub.statuses(t)
	require.Len(t, statuses, 2)
	assert.Equal(t, entity.JobStatusProcessing, statuses[0].Status)
	assert.Equal(t, entity.JobStatusCompleted, statuses[1].Status)
	assert.Equal(t, jobID, statuses[1].JobID)
	assert.Equal(t, 2, statuses[1].FrameCount)
	assert.Equal(t, int64(300), statuses[1].ProcessingTimeMs)
	assert.Equal(t, store.storedKey, statuses[1].ArchiveKey)
}

func TestProcessExtractionSkipsArchivingWhenNotRequested(t *testing.T) {
	proc := &fakeProcessor{
		meta:   fullHDMeta(),
		output: &port.ExtractionOutput{OutputPaths: []string{"a.jpg"}, FrameCount: 1},
	}
	store := &fakeStore{}
	archiver := &fakeArchiver{}
	pub := &capturingPublisher{}
	uc := newTestPipeline(t, proc, store, archiver, pub, &capturingDLQ{}, 3)

	require.NoError(t, uc.Execute(context.Background(), requestMessage(t, uuid.New(), false)))

	assert.Zero(t, archiver.calls)
	assert.Empty(t, store.storedKey)

	statuses := pub.statuses(t)
	require.Len(t, statuses, 2)
	assert.Equal(t, entity.JobStatusCompleted, statuses[1].Status)
	assert.Empty(t, statuses[1].ArchiveKey)
}

func TestProcessExtractionSendsMalformedMessagesToDLQ(t *testing.T) {
	pub := &capturingPublisher{}
	dlq := &capturingDLQ{}
	uc := newTestPipeline(t, &fakeProcessor{}, &fakeStore{}, &fakeArchiver{}, pub, dlq, 3)

	err := uc.Execute(context.Background(), []byte("{not json"))
	require.NoError(t, err, "poison messages must be acked, not redelivered")

	require.Len(t, dlq.messages, 1)
	assert.Contains(t, dlq.reasons[0], "unmarshal_error")
	assert.Empty(t, pub.messages)
}

func TestProcessExtractionRejectsBadParametersBeforeFetching(t *testing.T) {
	store := &fakeStore{}
	pub := &capturingPublisher{}
	dlq := &capturingDLQ{}
	uc := newTestPipeline(t, &fakeProcessor{}, store, &fakeArchiver{}, pub, dlq, 3)

	raw, err := json.Marshal(entity.ExtractionRequestMessage{
		JobID:    uuid.New(),
		VideoKey: "uploads/clip.mp4",
		Strategy: extraction.UniformSampling(0),
	})
	require.NoError(t, err)

	require.NoError(t, uc.Execute(context.Background(), raw))

	assert.Zero(t, store.fetchCalls, "rejected parameters must not cost a download")
	require.Len(t, dlq.messages, 1)

	statuses := pub.statuses(t)
	require.Len(t, statuses, 2)
	assert.Equal(t, entity.JobStatusFailed, statuses[1].Status)
	assert.Equal(t, string(extraction.FailureInvalidParameters), statuses[1].ErrorCode)
	assert.Equal(t, 1, statuses[1].Attempt)
}

func TestProcessExtractionMissingVideoFailsPermanently(t *testing.T) {
	proc := &fakeProcessor{meta: fullHDMeta()}
	store := &fakeStore{fetchErr: fmt.Errorf("%w: uploads/clip.mp4", port.ErrVideoNotFound)}
	pub := &capturingPublisher{}
	dlq := &capturingDLQ{}
	uc := newTestPipeline(t, proc, store, &fakeArchiver{}, pub, dlq, 3)

	require.NoError(t, uc.Execute(context.Background(), requestMessage(t, uuid.New(), true)))

	assert.Equal(t, 1, store.fetchCalls)
	assert.Zero(t, proc.metaCalls, "extractor must not run without a source file")
	require.Len(t, dlq.messages, 1)

	statuses := pub.statuses(t)
	require.Len(t, statuses, 2)
	assert.Equal(t, string(extraction.FailureVideoNotFound), statuses[1].ErrorCode)
}

func TestProcessExtractionPermanentFailureIsNotRetried(t *testing.T) {
	proc := &fakeProcessor{metaErr: port.ErrVideoNotFound}
	store := &fakeStore{}
	pub := &capturingPublisher{}
	dlq := &capturingDLQ{}
	uc := newTestPipeline(t, proc, store, &fakeArchiver{}, pub, dlq, 3)

	err := uc.Execute(context.Background(), requestMessage(t, uuid.New(), true))
	require.NoError(t, err)

	assert.Equal(t, 1, proc.metaCalls, "deterministic failures get exactly one attempt")
	require.Len(t, dlq.messages, 1)

	statuses := pub.statuses(t)
	require.Len(t, statuses, 2)
	assert.Equal(t, entity.JobStatusFailed, statuses[1].Status)
	assert.Equal(t, string(extraction.FailureVideoNotFound), statuses[1].ErrorCode)
	assert.Equal(t, 1, statuses[1].Attempt)
}

func TestProcessExtractionRetriesToolchainFailures(t *testing.T) {
	proc := &fakeProcessor{meta: fullHDMeta(), extractErr: port.ErrProcessingFailed}
	pub := &capturingPublisher{}
	dlq := &capturingDLQ{}
	uc := newTestPipeline(t, proc, &fakeStore{}, &fakeArchiver{}, pub, dlq, 2)

	err := uc.Execute(context.Background(), requestMessage(t, uuid.New(), true))
	require.NoError(t, err)

	assert.Equal(t, 2, proc.extractCalls)
	require.Len(t, dlq.messages, 1)

	statuses := pub.statuses(t)
	require.Len(t, statuses, 3)
	assert.Equal(t, entity.JobStatusProcessing, statuses[0].Status)
	assert.Equal(t, entity.JobStatusProcessing, statuses[1].Status)
	assert.Equal(t, entity.JobStatusFailed, statuses[2].Status)
	assert.Equal(t, 2, statuses[2].Attempt)
	assert.Equal(t, string(extraction.FailureProcessing), statuses[2].ErrorCode)
}
