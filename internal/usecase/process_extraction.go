package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/entity"
	"github.com/framelift/extraction-service/internal/domain/extraction"
	"github.com/framelift/extraction-service/internal/domain/port"
	"github.com/framelift/extraction-service/internal/infra/metrics"
)

const maxRetryBackoff = 60 * time.Second

// ProcessExtractionUseCase consumes one queued extraction request end to
// end: fetch the source from the object store, run the extractor, optionally
// archive and upload the frames, and publish status after every attempt.
//
// Retry policy lives here, not in the extractor: only processing and unknown
// failures are worth another attempt. Bad parameters, quota misses, missing
// or unreadable sources and cancellations fail permanently and go to the DLQ.
type ProcessExtractionUseCase struct {
	extractor *Extractor
	storage   port.ObjectStore
	archiver  port.Archiver
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	logger    *zap.Logger
	tempDir   string
	maxRetry  int
	baseDelay time.Duration
}

type ProcessExtractionConfig struct {
	TempDir        string
	MaxRetries     int
	RetryBaseDelay time.Duration
}

func NewProcessExtractionUseCase(
	extractor *Extractor,
	storage port.ObjectStore,
	archiver port.Archiver,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	logger *zap.Logger,
	cfg ProcessExtractionConfig,
) *ProcessExtractionUseCase {
	return &ProcessExtractionUseCase{
		extractor: extractor,
		storage:   storage,
		archiver:  archiver,
		publisher: publisher,
		dlq:       dlq,
		logger:    logger,
		tempDir:   cfg.TempDir,
		maxRetry:  cfg.MaxRetries,
		baseDelay: cfg.RetryBaseDelay,
	}
}

// Execute handles one raw queue message. A nil return acks the message; an
// error return hands it back to the broker for redelivery, which only
// happens when the worker is shutting down mid-job.
func (uc *ProcessExtractionUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessExtractionUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.ExtractionRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		metrics.JobsProcessedTotal.WithLabelValues("invalid").Inc()
		return nil
	}

	job := entity.NewExtractionJob(msg.JobID, msg.VideoKey, msg.Strategy, uc.maxRetry)
	span.SetAttributes(
		attribute.String("job.id", job.ID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)
	log := uc.logger.With(zap.String("job_id", job.ID.String()), zap.String("video_key", msg.VideoKey))

	var lastErr error
	for job.CanRetry() {
		job.MarkProcessing()
		uc.publishStatus(ctx, job, 0, log)

		archiveKey, result, err := uc.attempt(ctx, job, msg, log)
		if err == nil {
			job.MarkCompleted(archiveKey, result)
			uc.publishStatus(ctx, job, result.ProcessingTime.Milliseconds(), log)
			metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
			metrics.ExtractionStageDuration.WithLabelValues("job_total").Observe(time.Since(totalTimer).Seconds())
			log.Info("job completed",
				zap.Int("frame_count", result.TotalFrames),
				zap.Float64("actual_storage_mb", result.ActualStorageMB),
				zap.String("archive_key", archiveKey),
			)
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// Shutdown mid-job: hand the message back untouched.
			return fmt.Errorf("job interrupted: %w", ctx.Err())
		}

		code := extraction.CodeOf(err)
		if !retryable(code) {
			log.Error("job failed permanently", zap.String("failure_code", string(code)), zap.Error(err))
			return uc.handlePermanentFailure(ctx, job, rawMsg, code, err, log)
		}

		log.Warn("attempt failed",
			zap.Int("attempt", job.Attempt),
			zap.Int("max_attempts", job.MaxAttempts),
			zap.Error(err),
		)
		metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()

		if job.CanRetry() {
			select {
			case <-ctx.Done():
				return fmt.Errorf("job interrupted: %w", ctx.Err())
			case <-time.After(uc.backoffFor(job.Attempt)):
			}
		}
	}

	log.Error("job exhausted retries", zap.Error(lastErr))
	return uc.handlePermanentFailure(ctx, job, rawMsg, extraction.CodeOf(lastErr), lastErr, log)
}

func (uc *ProcessExtractionUseCase) attempt(
	ctx context.Context,
	job *entity.ExtractionJob,
	msg entity.ExtractionRequestMessage,
	log *zap.Logger,
) (string, *extraction.ExtractionResult, error) {
	tracer := otel.Tracer("usecase")

	// Screen the parameters before paying for the download. The extractor
	// validates again as part of its own lifecycle; this only spares the
	// object store a fetch that is guaranteed to be wasted.
	var findings []extraction.ValidationError
	findings = append(findings, extraction.ValidateStrategy(msg.Strategy)...)
	if msg.Quality != nil {
		findings = append(findings, extraction.ValidateQuality(*msg.Quality)...)
	}
	if blocking := extraction.Blocking(findings); len(blocking) > 0 {
		return "", nil, extraction.NewError(extraction.FailureInvalidParameters,
			"request failed validation").WithViolations(blocking)
	}

	workDir := filepath.Join(uc.tempDir, fmt.Sprintf("%s_attempt%d", job.ID, job.Attempt))
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", nil, fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Fetch the source video from the object store. The original extension
	// is kept so format detection still has something to look at.
	ext := filepath.Ext(msg.VideoKey)
	if ext == "" {
		ext = ".mp4"
	}
	videoPath := filepath.Join(workDir, "input"+ext)

	fetchTimer := time.Now()
	ctxDl, spanDl := tracer.Start(ctx, "fetch_video")
	err := uc.storage.FetchVideo(ctxDl, msg.VideoKey, videoPath)
	spanDl.End()
	metrics.ExtractionStageDuration.WithLabelValues("fetch").Observe(time.Since(fetchTimer).Seconds())
	if err != nil {
		// A missing object fails permanently; transient store trouble stays
		// unknown and gets retried.
		return "", nil, mapCapabilityError(err, "fetch video")
	}

	result, err := uc.extractor.ExtractFrames(ctx, extraction.FrameExtractionRequest{
		VideoPath:       videoPath,
		OutputDirectory: filepath.Join(workDir, "frames"),
		Strategy:        msg.Strategy,
		Quality:         msg.Quality,
	})
	if err != nil {
		return "", nil, err
	}

	if !msg.Archive {
		return "", result, nil
	}

	archiveTimer := time.Now()
	ctxZip, spanZip := tracer.Start(ctx, "create_archive")
	archivePath := filepath.Join(workDir, "frames.zip")
	err = uc.archiver.CreateArchive(ctxZip, result.Frames, archivePath)
	spanZip.End()
	metrics.ExtractionStageDuration.WithLabelValues("archive").Observe(time.Since(archiveTimer).Seconds())
	if err != nil {
		return "", nil, fmt.Errorf("create archive: %w", err)
	}

	uploadTimer := time.Now()
	ctxUp, spanUp := tracer.Start(ctx, "upload_archive")
	archiveKey := fmt.Sprintf("frames_%s.zip", job.ID)
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		spanUp.End()
		return "", nil, fmt.Errorf("open archive: %w", err)
	}
	stat, err := archiveFile.Stat()
	if err != nil {
		archiveFile.Close()
		spanUp.End()
		return "", nil, fmt.Errorf("stat archive: %w", err)
	}
	err = uc.storage.StoreArchive(ctxUp, archiveKey, archiveFile, stat.Size())
	archiveFile.Close()
	spanUp.End()
	metrics.ExtractionStageDuration.WithLabelValues("upload").Observe(time.Since(uploadTimer).Seconds())
	if err != nil {
		return "", nil, fmt.Errorf("upload archive: %w", err)
	}

	log.Info("archive uploaded", zap.String("archive_key", archiveKey), zap.Int64("size_bytes", stat.Size()))
	return archiveKey, result, nil
}

func (uc *ProcessExtractionUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.ExtractionJob,
	rawMsg []byte,
	code extraction.FailureCode,
	err error,
	log *zap.Logger,
) error {
	reason := "unknown failure"
	if err != nil {
		reason = err.Error()
	}

	job.MarkFailed(code, reason)
	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, reason)
	uc.publishStatus(ctx, job, 0, log)
	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()
	return nil
}

func (uc *ProcessExtractionUseCase) publishStatus(ctx context.Context, job *entity.ExtractionJob, processingTimeMs int64, log *zap.Logger) {
	data, _ := json.Marshal(entity.StatusFromJob(job, processingTimeMs))
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}

func (uc *ProcessExtractionUseCase) backoffFor(attempt int) time.Duration {
	delay := uc.baseDelay * time.Duration(1<<uint(attempt-1))
	if delay > maxRetryBackoff {
		delay = maxRetryBackoff
	}
	return delay
}

// retryable reports whether another attempt could plausibly succeed. Only
// toolchain hiccups and unclassified failures qualify; everything else is
// deterministic and would fail the same way again.
func retryable(code extraction.FailureCode) bool {
	return code == extraction.FailureProcessing || code == extraction.FailureUnknown
}
