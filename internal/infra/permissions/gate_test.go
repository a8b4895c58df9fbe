package permissions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/port"
)

func gateWithEnv(dir string, env map[string]string) *Gate {
	g := NewGate(dir, zap.NewNop())
	g.lookup = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return g
}

func TestGateEnvironmentOverrideWins(t *testing.T) {
	tests := []struct {
		raw  string
		want port.PermissionStatus
	}{
		{"granted", port.PermissionGranted},
		{"ALLOW", port.PermissionGranted},
		{"denied", port.PermissionDenied},
		{"blocked", port.PermissionBlocked},
		{"unavailable", port.PermissionUnavailable},
		{"whatever", port.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			g := gateWithEnv(t.TempDir(), map[string]string{"PERMISSION_MEDIA_LIBRARY": tt.raw})
			status, err := g.Check(context.Background(), port.PermissionMediaLibrary)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestGateProbesInboxWhenUnpinned(t *testing.T) {
	t.Run("readable directory grants", func(t *testing.T) {
		g := gateWithEnv(t.TempDir(), nil)
		status, err := g.Check(context.Background(), port.PermissionMediaLibrary)
		require.NoError(t, err)
		assert.Equal(t, port.PermissionGranted, status)
	})

	t.Run("missing directory is unavailable", func(t *testing.T) {
		g := gateWithEnv(filepath.Join(t.TempDir(), "nope"), nil)
		status, err := g.Check(context.Background(), port.PermissionMediaLibrary)
		require.NoError(t, err)
		assert.Equal(t, port.PermissionUnavailable, status)
	})

	t.Run("unreadable directory denies", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory modes")
		}
		dir := filepath.Join(t.TempDir(), "locked")
		require.NoError(t, os.Mkdir(dir, 0o000))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

		g := gateWithEnv(dir, nil)
		status, err := g.Check(context.Background(), port.PermissionMediaLibrary)
		require.NoError(t, err)
		assert.Equal(t, port.PermissionDenied, status)
	})
}

func TestGateCameraIsUnavailableWithoutOverride(t *testing.T) {
	g := gateWithEnv(t.TempDir(), nil)
	status, err := g.Check(context.Background(), port.PermissionCamera)
	require.NoError(t, err)
	assert.Equal(t, port.PermissionUnavailable, status)

	g = gateWithEnv(t.TempDir(), map[string]string{"PERMISSION_CAMERA": "granted"})
	status, err = g.Check(context.Background(), port.PermissionCamera)
	require.NoError(t, err)
	assert.Equal(t, port.PermissionGranted, status)
}

func TestGateRequestMirrorsCheck(t *testing.T) {
	g := gateWithEnv(t.TempDir(), map[string]string{"PERMISSION_MEDIA_LIBRARY": "denied"})
	status, err := g.Request(context.Background(), port.PermissionMediaLibrary)
	require.NoError(t, err)
	assert.Equal(t, port.PermissionDenied, status)

	assert.NoError(t, g.OpenSettings(context.Background()))
}
