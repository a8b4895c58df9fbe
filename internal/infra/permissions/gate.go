package permissions

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/port"
)

// Environment keys that pin a permission to a fixed answer. Deployments use
// them to model denied or blocked hosts without touching the filesystem.
const (
	envMediaLibrary = "PERMISSION_MEDIA_LIBRARY"
	envCamera       = "PERMISSION_CAMERA"
)

// Gate resolves permissions for a headless host. An env override wins when
// present; otherwise the media library permission is probed by reading the
// inbox directory, and the camera is reported unavailable because server
// hosts have no capture hardware.
type Gate struct {
	inboxDir string
	lookup   func(string) (string, bool)
	logger   *zap.Logger
}

func NewGate(inboxDir string, logger *zap.Logger) *Gate {
	return &Gate{
		inboxDir: inboxDir,
		lookup:   os.LookupEnv,
		logger:   logger,
	}
}

func (g *Gate) Check(ctx context.Context, permission port.PermissionType) (port.PermissionStatus, error) {
	if raw, ok := g.lookup(envKeyFor(permission)); ok {
		status := parseStatus(raw)
		g.logger.Debug("permission pinned by environment",
			zap.String("permission", string(permission)),
			zap.String("status", string(status)),
		)
		return status, nil
	}

	switch permission {
	case port.PermissionMediaLibrary:
		return g.probeInbox(), nil
	case port.PermissionCamera:
		return port.PermissionUnavailable, nil
	default:
		return port.PermissionUnavailable, nil
	}
}

// Request re-checks. A headless host has nobody to show a prompt to, so the
// probe result is as granted as it gets; pinned denials stay denied.
func (g *Gate) Request(ctx context.Context, permission port.PermissionType) (port.PermissionStatus, error) {
	status, err := g.Check(ctx, permission)
	if err != nil {
		return status, err
	}
	g.logger.Info("permission requested",
		zap.String("permission", string(permission)),
		zap.String("status", string(status)),
	)
	return status, nil
}

// OpenSettings can only point an operator at the fix.
func (g *Gate) OpenSettings(ctx context.Context) error {
	g.logger.Info("permission blocked, adjust the PERMISSION_* environment or inbox directory access")
	return nil
}

func (g *Gate) probeInbox() port.PermissionStatus {
	info, err := os.Stat(g.inboxDir)
	switch {
	case err == nil && info.IsDir():
		if _, err := os.ReadDir(g.inboxDir); err != nil {
			return port.PermissionDenied
		}
		return port.PermissionGranted
	case os.IsNotExist(err):
		return port.PermissionUnavailable
	case os.IsPermission(err):
		return port.PermissionDenied
	default:
		return port.PermissionDenied
	}
}

func envKeyFor(permission port.PermissionType) string {
	if permission == port.PermissionCamera {
		return envCamera
	}
	return envMediaLibrary
}

// parseStatus is forgiving about spelling: common yes/no words map onto the
// nearest status, anything unrecognized is treated as denied.
func parseStatus(raw string) port.PermissionStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "granted", "allow", "allowed", "yes", "true", "1":
		return port.PermissionGranted
	case "denied", "deny", "no", "false", "0":
		return port.PermissionDenied
	case "blocked", "never":
		return port.PermissionBlocked
	case "unavailable", "unsupported":
		return port.PermissionUnavailable
	default:
		return port.PermissionDenied
	}
}
