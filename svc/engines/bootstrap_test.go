package engines_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furfolio/enginekit/pkg/config"
	"github.com/furfolio/enginekit/pkg/escalation"
	"github.com/furfolio/enginekit/svc/engines"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestBootstrap_Memory(t *testing.T) {
	t.Parallel()

	policy := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(policy, []byte("terms: [bite]\nextend: true\n"), 0o600))

	cfg := testConfig()
	cfg.TrailBackend = engines.BackendMemory
	cfg.EscalationPolicy = policy

	r, err := engines.Bootstrap(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })

	assert.Len(t, r.Names(), 4)
	assert.True(t, r.Badge.RecordEvent(context.Background(), "bite reported", nil).Escalate)
	assert.True(t, r.Badge.RecordEvent(context.Background(), "critical", nil).Escalate)

	failures, err := r.Healthcheck(context.Background())
	require.NoError(t, err)
	assert.Empty(t, failures)

	mfs, err := r.Gatherer().Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "go_goroutines")
	assert.Contains(t, names, "furfolio_engine_events_recorded_total")
}

func TestBootstrap_LogTelemetry(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg := testConfig()
	cfg.TestMode = false
	cfg.Telemetry = []string{engines.TelemetryLog}

	r, err := engines.Bootstrap(context.Background(), cfg, slog.New(slog.NewJSONHandler(&out, nil)))
	require.NoError(t, err)

	r.Badge.RecordEvent(context.Background(), "BadgeAwarded", nil)
	assert.Contains(t, out.String(), `"msg":"engine event"`)
	assert.False(t, r.Badge.Diagnostics().TestMode)
}

func TestBootstrap_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*engines.Config)
		err    error
	}{
		{"unknown trail backend", func(c *engines.Config) { c.TrailBackend = "etcd" }, engines.ErrUnknownTrailBackend},
		{"unknown telemetry", func(c *engines.Config) {
			c.TestMode = false
			c.Telemetry = []string{"log", "statsd"}
		}, engines.ErrUnknownTelemetry},
		{"missing policy file", func(c *engines.Config) { c.EscalationPolicy = "/nonexistent/policy.yaml" }, escalation.ErrInvalidPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := engines.Bootstrap(context.Background(), cfg, quietLogger())
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg engines.Config
	require.NoError(t, config.Parse(&cfg))

	assert.Equal(t, 20, cfg.BufferCapacity)
	assert.Equal(t, 1000, cfg.TrailCapacity)
	assert.False(t, cfg.TestMode)
	assert.Equal(t, "5s", cfg.SinkTimeout.String())
	assert.Equal(t, engines.BackendMemory, cfg.TrailBackend)
	assert.Equal(t, []string{engines.TelemetryLog}, cfg.Telemetry)
	assert.True(t, cfg.FilterPII)
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("ENGINE_BUFFER_CAPACITY", "50")
	t.Setenv("ENGINE_TRAIL_BACKEND", "redis")
	t.Setenv("ENGINE_TELEMETRY", "log,opensearch")
	t.Setenv("ENGINE_TEST_MODE", "true")

	var cfg engines.Config
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, 50, cfg.BufferCapacity)
	assert.Equal(t, engines.BackendRedis, cfg.TrailBackend)
	assert.Equal(t, []string{"log", "opensearch"}, cfg.Telemetry)
	assert.True(t, cfg.TestMode)
}
