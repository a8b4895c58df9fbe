package extraction

import (
	"fmt"
	"math"
	"strings"
)

// ValidationCode identifies one kind of validation finding. Codes are the
// stable contract; messages are for humans and may change.
type ValidationCode string

const (
	CodeInvalidValue         ValidationCode = "INVALID_VALUE"
	CodeUnknownStrategy      ValidationCode = "UNKNOWN_STRATEGY"
	CodeFrameCountTooLow     ValidationCode = "FRAME_COUNT_TOO_LOW"
	CodeFrameCountTooHigh    ValidationCode = "FRAME_COUNT_TOO_HIGH"
	CodeIntervalTooLow       ValidationCode = "INTERVAL_TOO_LOW"
	CodeIntervalTooHigh      ValidationCode = "INTERVAL_TOO_HIGH"
	CodeFrameIntervalTooLow  ValidationCode = "FRAME_INTERVAL_TOO_LOW"
	CodeFrameIntervalTooHigh ValidationCode = "FRAME_INTERVAL_TOO_HIGH"
	CodeFPSTooLow            ValidationCode = "FPS_TOO_LOW"
	CodeFPSTooHigh           ValidationCode = "FPS_TOO_HIGH"
	CodeQualityOutOfRange    ValidationCode = "QUALITY_OUT_OF_RANGE"
	CodeEmptyPath            ValidationCode = "EMPTY_PATH"
	CodeMissingURI           ValidationCode = "MISSING_URI"
	CodeMissingFileName      ValidationCode = "MISSING_FILE_NAME"
	CodeUnsupportedExtension ValidationCode = "UNSUPPORTED_EXTENSION"
	CodeUnsupportedMimeType  ValidationCode = "UNSUPPORTED_MIME_TYPE"
	CodeFileTooLarge         ValidationCode = "FILE_TOO_LARGE"
	CodeStorageLimitExceeded ValidationCode = "STORAGE_LIMIT_EXCEEDED"
)

// ValidationError is one structured finding against one field. Blocking is
// true for real errors; advisory findings (currently only the large-file
// warning) set it to false and never fail a request on their own.
type ValidationError struct {
	Field    string         `json:"field"`
	Message  string         `json:"message"`
	Code     ValidationCode `json:"code"`
	Blocking bool           `json:"blocking"`
}

func newValidationError(field string, code ValidationCode, format string, args ...any) ValidationError {
	return ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Blocking: true,
	}
}

func newValidationWarning(field string, code ValidationCode, format string, args ...any) ValidationError {
	return ValidationError{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Blocking: false,
	}
}

// ValidationResult aggregates every finding for one request. Valid is always
// derived from the absence of blocking findings, never set independently.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// NewValidationResult derives Valid from the findings so the two can never
// disagree. The Errors slice is non-nil even when empty.
func NewValidationResult(errs []ValidationError) ValidationResult {
	if errs == nil {
		errs = []ValidationError{}
	}
	return ValidationResult{
		Valid:  len(Blocking(errs)) == 0,
		Errors: errs,
	}
}

// Blocking filters the findings that fail a request.
func Blocking(errs []ValidationError) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if e.Blocking {
			out = append(out, e)
		}
	}
	return out
}

// Warnings filters the advisory findings.
func Warnings(errs []ValidationError) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if !e.Blocking {
			out = append(out, e)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isIntegral(v float64) bool {
	return v == math.Trunc(v)
}

// ValidateUniformSampling checks the frame count of a uniform strategy. A
// non-finite or fractional count is reported as INVALID_VALUE alone; the
// range check only applies to values that are whole numbers to begin with.
func ValidateUniformSampling(frameCount float64) []ValidationError {
	if !isFinite(frameCount) || !isIntegral(frameCount) {
		return []ValidationError{newValidationError("frame_count", CodeInvalidValue,
			"frame count must be a finite whole number, got %v", frameCount)}
	}
	if frameCount < MinFrameCount {
		return []ValidationError{newValidationError("frame_count", CodeFrameCountTooLow,
			"frame count must be at least %d, got %g", MinFrameCount, frameCount)}
	}
	if frameCount > MaxFrameCount {
		return []ValidationError{newValidationError("frame_count", CodeFrameCountTooHigh,
			"frame count must be at most %d, got %g", MaxFrameCount, frameCount)}
	}
	return nil
}

// ValidateIntervalSampling checks the spacing of an interval strategy.
func ValidateIntervalSampling(intervalSeconds float64) []ValidationError {
	if !isFinite(intervalSeconds) {
		return []ValidationError{newValidationError("interval_seconds", CodeInvalidValue,
			"interval must be a finite number, got %v", intervalSeconds)}
	}
	if intervalSeconds < MinIntervalSeconds {
		return []ValidationError{newValidationError("interval_seconds", CodeIntervalTooLow,
			"interval must be at least %gs, got %gs", MinIntervalSeconds, intervalSeconds)}
	}
	if intervalSeconds > MaxIntervalSeconds {
		return []ValidationError{newValidationError("interval_seconds", CodeIntervalTooHigh,
			"interval must be at most %gs, got %gs", MaxIntervalSeconds, intervalSeconds)}
	}
	return nil
}

// ValidateFrameBasedSampling checks the stride of a frame-based strategy.
func ValidateFrameBasedSampling(frameInterval float64) []ValidationError {
	if !isFinite(frameInterval) || !isIntegral(frameInterval) {
		return []ValidationError{newValidationError("frame_interval", CodeInvalidValue,
			"frame interval must be a finite whole number, got %v", frameInterval)}
	}
	if frameInterval < MinFrameInterval {
		return []ValidationError{newValidationError("frame_interval", CodeFrameIntervalTooLow,
			"frame interval must be at least %d, got %g", MinFrameInterval, frameInterval)}
	}
	if frameInterval > MaxFrameInterval {
		return []ValidationError{newValidationError("frame_interval", CodeFrameIntervalTooHigh,
			"frame interval must be at most %d, got %g", MaxFrameInterval, frameInterval)}
	}
	return nil
}

// ValidateCustomFPS checks the rate of a custom-fps strategy.
func ValidateCustomFPS(fps float64) []ValidationError {
	if !isFinite(fps) {
		return []ValidationError{newValidationError("fps", CodeInvalidValue,
			"fps must be a finite number, got %v", fps)}
	}
	if fps < MinCustomFPS {
		return []ValidationError{newValidationError("fps", CodeFPSTooLow,
			"fps must be at least %g, got %g", MinCustomFPS, fps)}
	}
	if fps > MaxCustomFPS {
		return []ValidationError{newValidationError("fps", CodeFPSTooHigh,
			"fps must be at most %g, got %g", MaxCustomFPS, fps)}
	}
	return nil
}

// ValidateStrategy dispatches to the per-strategy validator. All-frames has
// no parameters and always passes; an unrecognized type is itself a finding.
func ValidateStrategy(s Strategy) []ValidationError {
	switch s.Type {
	case StrategyUniform:
		return ValidateUniformSampling(s.FrameCount)
	case StrategyInterval:
		return ValidateIntervalSampling(s.IntervalSeconds)
	case StrategyFrameBased:
		return ValidateFrameBasedSampling(s.FrameInterval)
	case StrategyAllFrames:
		return nil
	case StrategyCustomFPS:
		return ValidateCustomFPS(s.FPS)
	default:
		return []ValidationError{newValidationError("strategy", CodeUnknownStrategy,
			"unknown sampling strategy %q", string(s.Type))}
	}
}

// ValidateQuality checks an explicitly provided quality value. Fractional
// values inside the range are fine; the ratio table rounds them to the
// nearest row.
func ValidateQuality(quality float64) []ValidationError {
	if !isFinite(quality) {
		return []ValidationError{newValidationError("quality", CodeInvalidValue,
			"quality must be a finite number, got %v", quality)}
	}
	if quality < MinQuality || quality > MaxQuality {
		return []ValidationError{newValidationError("quality", CodeQualityOutOfRange,
			"quality must be within [%g, %g], got %g", MinQuality, MaxQuality, quality)}
	}
	return nil
}

// ValidatePath rejects empty and whitespace-only path values.
func ValidatePath(field, value string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return []ValidationError{newValidationError(field, CodeEmptyPath,
			"%s must not be empty", field)}
	}
	return nil
}

// ValidateRequest runs every check against a request and aggregates the
// findings. It never stops at the first problem: a request with an empty
// path, a bad strategy parameter and a bad quality reports all three.
func ValidateRequest(r FrameExtractionRequest) ValidationResult {
	var errs []ValidationError
	errs = append(errs, ValidatePath("video_path", r.VideoPath)...)
	errs = append(errs, ValidatePath("output_directory", r.OutputDirectory)...)
	errs = append(errs, ValidateStrategy(r.Strategy)...)
	if r.Quality != nil {
		errs = append(errs, ValidateQuality(*r.Quality)...)
	}
	return NewValidationResult(errs)
}

// ValidateVideoFile checks an imported file. Identity problems (missing URI
// or name) short-circuit: nothing else can be judged without them. Format
// checks aggregate, and an oversized file only produces a warning.
func ValidateVideoFile(f VideoFile) []ValidationError {
	var errs []ValidationError
	if strings.TrimSpace(f.URI) == "" {
		errs = append(errs, newValidationError("uri", CodeMissingURI, "file uri must not be empty"))
	}
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, newValidationError("name", CodeMissingFileName, "file name must not be empty"))
	}
	if len(errs) > 0 {
		return errs
	}

	if !IsSupportedVideoExtension(f.Name) {
		errs = append(errs, newValidationError("name", CodeUnsupportedExtension,
			"unsupported video extension in %q", f.Name))
	}
	if f.MimeType != "" && !isSupportedVideoMimeType(f.MimeType) {
		errs = append(errs, newValidationError("mime_type", CodeUnsupportedMimeType,
			"unsupported mime type %q", f.MimeType))
	}
	if f.Size > LargeFileThresholdBytes {
		errs = append(errs, newValidationWarning("size", CodeFileTooLarge,
			"file is %d bytes, processing may be slow above %d bytes", f.Size, LargeFileThresholdBytes))
	}
	return errs
}

// ValidateStorageQuota compares an estimated output size against the quota.
// A non-finite estimate cannot be judged and passes, leaving the decision to
// later stages that see real sizes.
func ValidateStorageQuota(estimatedMB float64) []ValidationError {
	if !isFinite(estimatedMB) {
		return nil
	}
	if estimatedMB > StorageQuotaMB {
		return []ValidationError{newValidationError("estimated_storage_mb", CodeStorageLimitExceeded,
			"estimated output of %.1f MB exceeds the %g MB quota", estimatedMB, StorageQuotaMB)}
	}
	return nil
}
