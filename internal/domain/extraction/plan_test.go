package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	req := FrameExtractionRequest{
		VideoPath:       "/videos/input.mp4",
		OutputDirectory: "/tmp/frames",
		Strategy:        UniformSampling(100),
	}
	meta := VideoMetadata{Duration: 60, Width: 1920, Height: 1080, FrameRate: 30}

	plan, err := NewPlan(req, meta)
	require.NoError(t, err)

	assert.InDelta(t, 1.6667, plan.ExtractionFPS, 1e-4)
	assert.Equal(t, 100, plan.EstimatedFrameCount)
	assert.Equal(t, DefaultQuality, plan.Quality)
	assert.Equal(t, 10*time.Second, plan.EstimatedDuration)
	assert.Equal(t, 1920, plan.VideoWidth)
	assert.Equal(t, 1080, plan.VideoHeight)

	perFrame, err := EstimateFrameStorageMB(1920, 1080, DefaultQuality)
	require.NoError(t, err)
	assert.Equal(t, float64(plan.EstimatedFrameCount)*perFrame, plan.EstimatedStorageMB)
}

func TestNewPlanIsDeterministic(t *testing.T) {
	q := 7.0
	req := FrameExtractionRequest{
		VideoPath:       "/videos/input.mp4",
		OutputDirectory: "/tmp/frames",
		Strategy:        IntervalSampling(1.5),
		Quality:         &q,
	}
	meta := VideoMetadata{Duration: 93.7, Width: 1280, Height: 720, FrameRate: 23.976}

	first, err := NewPlan(req, meta)
	require.NoError(t, err)
	second, err := NewPlan(req, meta)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNewPlanOverQuotaIsDetectable(t *testing.T) {
	q := 1.0
	req := FrameExtractionRequest{
		VideoPath:       "/videos/input.mp4",
		OutputDirectory: "/tmp/frames",
		Strategy:        UniformSampling(10000),
		Quality:         &q,
	}
	meta := VideoMetadata{Duration: 600, Width: 1920, Height: 1080, FrameRate: 30}

	plan, err := NewPlan(req, meta)
	require.NoError(t, err)

	assert.Greater(t, plan.EstimatedStorageMB, StorageQuotaMB)

	errs := ValidateStorageQuota(plan.EstimatedStorageMB)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeStorageLimitExceeded, errs[0].Code)
}

func TestNewPlanPropagatesCalculatorPreconditions(t *testing.T) {
	req := FrameExtractionRequest{
		VideoPath:       "/videos/input.mp4",
		OutputDirectory: "/tmp/frames",
		Strategy:        UniformSampling(10),
	}

	_, err := NewPlan(req, VideoMetadata{Duration: 0, Width: 1920, Height: 1080, FrameRate: 30})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
