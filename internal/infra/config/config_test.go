package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "frames.extract.requests", cfg.RabbitMQRequestQueue)
	assert.Equal(t, "frames.extract.requests.dlq", cfg.RabbitMQDLQ)
	assert.Equal(t, "framelift.extraction", cfg.RabbitMQExchange)
	assert.Equal(t, "videos", cfg.MinIOVideoBucket)
	assert.Equal(t, "frame-exports", cfg.MinIOExportBucket)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "jpg", cfg.FrameFormat)
	assert.Equal(t, 8080, cfg.APIPort)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RABBITMQ_REQUEST_QUEUE", "frames.other")
	t.Setenv("WORKER_COUNT", "7")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("WORKER_RETRY_BASE_DELAY_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "frames.other", cfg.RabbitMQRequestQueue)
	assert.Equal(t, 7, cfg.WorkerCount)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, 250, cfg.RetryBaseDelayMs)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")

	_, err := Load()
	require.Error(t, err)
}
