package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/extraction"
	"github.com/framelift/extraction-service/internal/domain/port"
	"github.com/framelift/extraction-service/internal/infra/metrics"
)

// ImportSource selects where the video comes from.
type ImportSource string

const (
	ImportSourceLibrary ImportSource = "library"
	ImportSourceCamera  ImportSource = "camera"
)

// Permission outcomes of an import attempt. Denied means the user said no
// when asked; blocked means asking is pointless until settings change;
// unavailable means this host cannot provide the capability at all.
var (
	ErrPermissionDenied      = errors.New("permission denied")
	ErrPermissionBlocked     = errors.New("permission blocked")
	ErrPermissionUnavailable = errors.New("permission unavailable")
)

// ImportedVideo is the outcome of a completed import flow. Cancelled is true
// when the picker returned nothing, which is not an error. Warnings carries
// advisory validation findings for files that were accepted anyway.
type ImportedVideo struct {
	File      *extraction.VideoFile
	Cancelled bool
	Warnings  []extraction.ValidationError
}

// Importer runs the import flow: permission check, permission request when
// deniable, picker invocation, then file validation.
type Importer struct {
	permissions port.PermissionGate
	picker      port.MediaPicker
	logger      *zap.Logger
}

func NewImporter(permissions port.PermissionGate, picker port.MediaPicker, logger *zap.Logger) *Importer {
	return &Importer{
		permissions: permissions,
		picker:      picker,
		logger:      logger,
	}
}

func (i *Importer) ImportVideo(ctx context.Context, source ImportSource) (*ImportedVideo, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "Importer.ImportVideo")
	defer span.End()
	span.SetAttributes(attribute.String("import.source", string(source)))

	log := i.logger.With(zap.String("source", string(source)))

	permission := port.PermissionMediaLibrary
	if source == ImportSourceCamera {
		permission = port.PermissionCamera
	}

	if err := i.ensurePermission(ctx, permission, log); err != nil {
		metrics.ImportsTotal.WithLabelValues("permission_refused").Inc()
		return nil, err
	}

	file, err := i.pick(ctx, source)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("failed").Inc()
		return nil, extraction.WrapError(extraction.FailureUnknown, "media picker failed", err)
	}
	if file == nil {
		log.Info("import cancelled by user")
		metrics.ImportsTotal.WithLabelValues("cancelled").Inc()
		return &ImportedVideo{Cancelled: true}, nil
	}

	findings := extraction.ValidateVideoFile(*file)
	if blocking := extraction.Blocking(findings); len(blocking) > 0 {
		log.Warn("imported file rejected",
			zap.String("name", file.Name),
			zap.Int("violations", len(blocking)),
		)
		metrics.ImportsTotal.WithLabelValues("rejected").Inc()
		return nil, extraction.NewError(extraction.FailureInvalidParameters,
			fmt.Sprintf("file %q is not importable", file.Name)).WithViolations(blocking)
	}

	warnings := extraction.Warnings(findings)
	for _, w := range warnings {
		log.Warn("import warning",
			zap.String("name", file.Name),
			zap.String("code", string(w.Code)),
			zap.String("message", w.Message),
		)
	}

	log.Info("video imported",
		zap.String("name", file.Name),
		zap.Int64("size_bytes", file.Size),
		zap.String("mime_type", file.MimeType),
	)
	metrics.ImportsTotal.WithLabelValues("completed").Inc()
	return &ImportedVideo{File: file, Warnings: warnings}, nil
}

// ensurePermission resolves the permission to granted or fails with one of
// the permission sentinels. A plain denial gets one request before giving
// up; blocked state points the user at settings instead of re-asking.
func (i *Importer) ensurePermission(ctx context.Context, permission port.PermissionType, log *zap.Logger) error {
	status, err := i.permissions.Check(ctx, permission)
	if err != nil {
		return fmt.Errorf("check %s permission: %w", permission, err)
	}

	switch status {
	case port.PermissionGranted:
		return nil
	case port.PermissionUnavailable:
		return fmt.Errorf("%s: %w", permission, ErrPermissionUnavailable)
	case port.PermissionBlocked:
		if err := i.permissions.OpenSettings(ctx); err != nil {
			log.Warn("could not open settings", zap.Error(err))
		}
		return fmt.Errorf("%s: %w", permission, ErrPermissionBlocked)
	case port.PermissionDenied:
		requested, err := i.permissions.Request(ctx, permission)
		if err != nil {
			return fmt.Errorf("request %s permission: %w", permission, err)
		}
		switch requested {
		case port.PermissionGranted:
			return nil
		case port.PermissionBlocked:
			return fmt.Errorf("%s: %w", permission, ErrPermissionBlocked)
		default:
			return fmt.Errorf("%s: %w", permission, ErrPermissionDenied)
		}
	default:
		return fmt.Errorf("%s: unexpected permission status %q", permission, status)
	}
}

func (i *Importer) pick(ctx context.Context, source ImportSource) (*extraction.VideoFile, error) {
	if source == ImportSourceCamera {
		return i.picker.PickVideoFromCamera(ctx)
	}
	return i.picker.PickVideo(ctx)
}
