package port

import "context"

// PermissionType names a capability the import flow may need to touch.
type PermissionType string

const (
	PermissionMediaLibrary PermissionType = "media_library"
	PermissionCamera       PermissionType = "camera"
)

// PermissionStatus is the closed result set of a permission probe. Denied can
// become granted through Request; Blocked only changes through OpenSettings;
// Unavailable never changes on this host.
type PermissionStatus string

const (
	PermissionGranted     PermissionStatus = "granted"
	PermissionDenied      PermissionStatus = "denied"
	PermissionBlocked     PermissionStatus = "blocked"
	PermissionUnavailable PermissionStatus = "unavailable"
)

type PermissionGate interface {
	Check(ctx context.Context, permission PermissionType) (PermissionStatus, error)
	Request(ctx context.Context, permission PermissionType) (PermissionStatus, error)
	OpenSettings(ctx context.Context) error
}
