package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10, cfg.ConcurrentRequests)
	assert.Equal(t, 5000, cfg.MaxQueueSize)
	assert.Equal(t, 1000, cfg.QueueDrainThreshold)
	assert.Equal(t, 5*time.Millisecond, cfg.MinWaitTime())
	assert.Equal(t, 100*time.Millisecond, cfg.MaxWaitTime())
	assert.Equal(t, 5*time.Second, cfg.HealthCheckInterval())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BATCH_SIZE", "50")
	t.Setenv("MAX_QUEUE_SIZE", "200")
	t.Setenv("PAYMENT_PROCESSOR_DEFAULT", "http://localhost:8001")
	t.Setenv("WRITER_SOCKET_PATH", "/tmp/store.sock")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 200, cfg.MaxQueueSize)
	assert.Equal(t, "http://localhost:8001", cfg.ProcessorDefaultURL)
	assert.Equal(t, "/tmp/store.sock", cfg.WriterSocketPath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "batch size zero", key: "BATCH_SIZE", value: "0"},
		{name: "concorrência negativa", key: "CONCURRENT_REQUESTS", value: "-1"},
		{name: "fila sem capacidade", key: "MAX_QUEUE_SIZE", value: "0"},
		{name: "espera máxima menor que a mínima", key: "MAX_WAIT_TIME", value: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
