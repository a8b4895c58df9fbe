package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/extraction"
	"github.com/framelift/extraction-service/internal/domain/port"
	"github.com/framelift/extraction-service/internal/infra/metrics"
)

// Stage is the observable position of an extractor in its lifecycle. An
// extraction walks the stages in declaration order; planning alone stops
// after StagePlanning. StageFailed is reachable from anywhere.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageValidating       Stage = "validating"
	StageFetchingMetadata Stage = "fetching_metadata"
	StagePlanning         Stage = "planning"
	StageQuotaChecking    Stage = "quota_checking"
	StageExtracting       Stage = "extracting"
	StageAssemblingResult Stage = "assembling_result"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// ExtractorStatus is a consistent snapshot of the lifecycle for callers that
// poll progress.
type ExtractorStatus struct {
	Stage          Stage  `json:"stage"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

// Extractor drives one extraction at a time through validation, metadata
// probing, planning, quota checking and the video capability. A second
// ExtractFrames call while one is running fails with ErrExtractionInFlight
// instead of queueing.
type Extractor struct {
	processor port.VideoProcessor
	logger    *zap.Logger

	inFlight atomic.Bool

	mu      sync.Mutex
	stage   Stage
	failure *extraction.Error
}

func NewExtractor(processor port.VideoProcessor, logger *zap.Logger) *Extractor {
	return &Extractor{
		processor: processor,
		logger:    logger,
		stage:     StageIdle,
	}
}

func (e *Extractor) setStage(s Stage) {
	e.mu.Lock()
	e.stage = s
	if s != StageFailed {
		e.failure = nil
	}
	e.mu.Unlock()
}

func (e *Extractor) markFailed(err error) {
	var xerr *extraction.Error
	if !errors.As(err, &xerr) {
		xerr = extraction.WrapError(extraction.FailureUnknown, "extraction failed", err)
	}
	e.mu.Lock()
	e.stage = StageFailed
	e.failure = xerr
	e.mu.Unlock()
}

// Status reports the current stage together with the failure that put the
// extractor into StageFailed, when there is one.
func (e *Extractor) Status() ExtractorStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := ExtractorStatus{Stage: e.stage}
	if e.failure != nil {
		st.FailureCode = string(e.failure.Code)
		st.FailureMessage = e.failure.Message
	}
	return st
}

// ValidateRequest checks a request without touching the video or the
// lifecycle. All findings are aggregated; nothing short-circuits.
func (e *Extractor) ValidateRequest(r extraction.FrameExtractionRequest) extraction.ValidationResult {
	result := extraction.ValidateRequest(r)
	if result.Valid {
		metrics.ValidationsTotal.WithLabelValues("valid").Inc()
	} else {
		metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
	}
	return result
}

// PlanExtraction resolves a request into an immutable plan: validation,
// metadata probe, plan build, then stop. No frame is extracted and no quota
// is enforced here, so callers can inspect estimates before committing.
func (e *Extractor) PlanExtraction(ctx context.Context, r extraction.FrameExtractionRequest) (*extraction.Plan, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "Extractor.PlanExtraction")
	defer span.End()

	plan, err := e.buildPlan(ctx, r)
	if err != nil {
		e.markFailed(err)
		return nil, err
	}

	e.setStage(StageDone)
	e.logger.Info("extraction planned",
		zap.String("video_path", plan.VideoPath),
		zap.String("strategy", plan.Strategy.String()),
		zap.Float64("extraction_fps", plan.ExtractionFPS),
		zap.Int("estimated_frames", plan.EstimatedFrameCount),
		zap.Float64("estimated_storage_mb", plan.EstimatedStorageMB),
	)
	return plan, nil
}

// ExtractFrames runs the full lifecycle and returns the assembled result.
func (e *Extractor) ExtractFrames(ctx context.Context, r extraction.FrameExtractionRequest) (*extraction.ExtractionResult, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, extraction.ErrExtractionInFlight
	}
	defer e.inFlight.Store(false)

	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "Extractor.ExtractFrames")
	defer span.End()
	span.SetAttributes(
		attribute.String("video.path", r.VideoPath),
		attribute.String("extraction.strategy", r.Strategy.String()),
	)

	totalTimer := time.Now()
	metrics.ActiveExtractions.Inc()
	defer metrics.ActiveExtractions.Dec()

	result, err := e.run(ctx, r)
	if err != nil {
		e.markFailed(err)
		code := extraction.CodeOf(err)
		metrics.ExtractionsTotal.WithLabelValues("failed").Inc()
		metrics.ExtractionFailuresTotal.WithLabelValues(string(code)).Inc()
		e.logger.Error("extraction failed",
			zap.String("video_path", r.VideoPath),
			zap.String("failure_code", string(code)),
			zap.Error(err),
		)
		return nil, err
	}

	e.setStage(StageDone)
	metrics.ExtractionsTotal.WithLabelValues("completed").Inc()
	metrics.ExtractionStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())
	e.logger.Info("extraction completed",
		zap.String("video_path", r.VideoPath),
		zap.Int("frame_count", result.TotalFrames),
		zap.Float64("actual_storage_mb", result.ActualStorageMB),
		zap.Duration("processing_time", result.ProcessingTime),
	)
	return result, nil
}

// CancelExtraction aborts whatever the video capability is doing right now.
// It does not transition the lifecycle itself: the aborted stage observes the
// cancellation and fails with FailureCancelled on its own.
func (e *Extractor) CancelExtraction() {
	e.processor.Cancel()
}

func (e *Extractor) buildPlan(ctx context.Context, r extraction.FrameExtractionRequest) (*extraction.Plan, error) {
	tracer := otel.Tracer("usecase")

	e.setStage(StageValidating)
	_, spanV := tracer.Start(ctx, "validate_request")
	result := e.ValidateRequest(r)
	spanV.End()
	if !result.Valid {
		return nil, extraction.NewError(extraction.FailureInvalidParameters,
			"request failed validation").WithViolations(result.Errors)
	}

	e.setStage(StageFetchingMetadata)
	probeTimer := time.Now()
	ctxM, spanM := tracer.Start(ctx, "probe_metadata")
	meta, err := e.processor.GetMetadata(ctxM, r.VideoPath)
	spanM.End()
	metrics.ExtractionStageDuration.WithLabelValues("probe").Observe(time.Since(probeTimer).Seconds())
	if err != nil {
		return nil, mapCapabilityError(err, "probe metadata")
	}

	e.setStage(StagePlanning)
	_, spanP := tracer.Start(ctx, "build_plan")
	plan, err := extraction.NewPlan(r, *meta)
	spanP.End()
	if err != nil {
		return nil, extraction.WrapError(extraction.FailureInvalidParameters,
			"request cannot be planned against this video", err)
	}
	return plan, nil
}

func (e *Extractor) run(ctx context.Context, r extraction.FrameExtractionRequest) (*extraction.ExtractionResult, error) {
	tracer := otel.Tracer("usecase")

	plan, err := e.buildPlan(ctx, r)
	if err != nil {
		return nil, err
	}

	e.setStage(StageQuotaChecking)
	_, spanQ := tracer.Start(ctx, "check_quota")
	findings := extraction.ValidateStorageQuota(plan.EstimatedStorageMB)
	spanQ.End()
	if len(findings) > 0 {
		return nil, extraction.NewError(extraction.FailureInsufficientStorage,
			findings[0].Message).WithViolations(findings)
	}

	e.setStage(StageExtracting)
	extractTimer := time.Now()
	ctxE, spanE := tracer.Start(ctx, "extract_frames")
	out, err := e.processor.ExtractFrames(ctxE, port.ExtractionSpec{
		VideoPath:       plan.VideoPath,
		OutputDirectory: plan.OutputDirectory,
		FrameRate:       plan.ExtractionFPS,
		Quality:         plan.Quality,
	})
	spanE.End()
	metrics.ExtractionStageDuration.WithLabelValues("extract").Observe(time.Since(extractTimer).Seconds())
	if err != nil {
		return nil, mapCapabilityError(err, "extract frames")
	}
	metrics.FramesExtractedTotal.Add(float64(out.FrameCount))

	e.setStage(StageAssemblingResult)
	infos, err := extraction.GenerateFrameInfos(out.OutputPaths, plan.ExtractionFPS)
	if err != nil {
		return nil, extraction.WrapError(extraction.FailureUnknown, "could not assemble frame records", err)
	}

	return &extraction.ExtractionResult{
		Frames:          infos,
		TotalFrames:     out.FrameCount,
		ActualStorageMB: float64(out.BytesWritten) / (1024 * 1024),
		ProcessingTime:  out.ProcessingTime,
		Strategy:        r.Strategy,
	}, nil
}

// mapCapabilityError folds toolchain failures onto the taxonomy. The
// original error stays wrapped for errors.Is / errors.As.
func mapCapabilityError(err error, op string) error {
	switch {
	case errors.Is(err, port.ErrCancelled), errors.Is(err, context.Canceled):
		return extraction.WrapError(extraction.FailureCancelled, op+" cancelled", err)
	case errors.Is(err, port.ErrVideoNotFound):
		return extraction.WrapError(extraction.FailureVideoNotFound, "source video does not exist", err)
	case errors.Is(err, port.ErrUnsupportedFormat):
		return extraction.WrapError(extraction.FailureUnsupportedFormat, "source video format is not supported", err)
	case errors.Is(err, context.DeadlineExceeded):
		return extraction.WrapError(extraction.FailureProcessing, op+" timed out", err)
	case errors.Is(err, port.ErrProcessingFailed):
		return extraction.WrapError(extraction.FailureProcessing, op+" failed", err)
	default:
		return extraction.WrapError(extraction.FailureUnknown, op+" failed unexpectedly", err)
	}
}
