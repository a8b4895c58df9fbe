package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateFrameStorageMB(t *testing.T) {
	perFrame, err := EstimateFrameStorageMB(1920, 1080, DefaultQuality)
	require.NoError(t, err)

	// 1920*1080*3 bytes scaled by the q2 ratio and the 1.5 margin.
	assert.InDelta(t, 2.3137, perFrame, 1e-3)
}

func TestEstimateFrameStorageMBNeverGrowsWithQualityNumber(t *testing.T) {
	prev, err := EstimateFrameStorageMB(1280, 720, MinQuality)
	require.NoError(t, err)

	for q := MinQuality + 1; q <= MaxQuality; q++ {
		cur, err := EstimateFrameStorageMB(1280, 720, q)
		require.NoError(t, err)
		assert.LessOrEqual(t, cur, prev, "quality %g", q)
		prev = cur
	}
}

func TestEstimateTotalStorageMB(t *testing.T) {
	t.Run("scales the per frame estimate linearly", func(t *testing.T) {
		perFrame, err := EstimateFrameStorageMB(1920, 1080, 5)
		require.NoError(t, err)

		total, err := EstimateTotalStorageMB(100, 1920, 1080, 5)
		require.NoError(t, err)
		assert.Equal(t, float64(100)*perFrame, total)
	})

	t.Run("zero frames need zero storage", func(t *testing.T) {
		total, err := EstimateTotalStorageMB(0, 1920, 1080, 2)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("a full HD all frames run blows the quota", func(t *testing.T) {
		total, err := EstimateTotalStorageMB(10000, 1920, 1080, 1)
		require.NoError(t, err)
		assert.Greater(t, total, StorageQuotaMB)
	})
}

func TestEstimateProcessingDuration(t *testing.T) {
	d, err := EstimateProcessingDuration(50)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	d, err = EstimateProcessingDuration(0)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestEstimateFrameCount(t *testing.T) {
	t.Run("rounds to the nearest whole frame", func(t *testing.T) {
		n, err := EstimateFrameCount(100.0/60.0, 60)
		require.NoError(t, err)
		assert.Equal(t, 100, n)

		n, err = EstimateFrameCount(1.0/3.0, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("zero duration yields zero frames", func(t *testing.T) {
		n, err := EstimateFrameCount(5, 0)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestEstimatorPreconditions(t *testing.T) {
	_, err := EstimateFrameStorageMB(0, 1080, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EstimateFrameStorageMB(1920, -1, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EstimateFrameStorageMB(1920, 1080, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EstimateFrameStorageMB(1920, 1080, 32)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EstimateTotalStorageMB(-1, 1920, 1080, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EstimateProcessingDuration(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EstimateFrameCount(0, 10)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = EstimateFrameCount(5, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
