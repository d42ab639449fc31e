package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furfolio/enginekit/pkg/logger"
)

func TestWithDevelopment(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithDevelopment("engines"),
		logger.WithOutput(buf),
	)
	log.Debug("msg")
	output := buf.String()
	assert.Contains(t, output, "DEBUG")
	assert.Contains(t, output, "service=engines")
	assert.Contains(t, output, "env=development")
}

func TestWithProduction(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithProduction("engines"),
		logger.WithOutput(buf),
	)
	log.Debug("hidden")
	log.Info("msg")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "engines", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "msg", entry["msg"])
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env     string
		wantEnv string
		json    bool
	}{
		{"prod", "production", true},
		{"production", "production", true},
		{"stage", "staging", true},
		{"dev", "development", false},
		{"", "development", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			log := logger.New(logger.WithEnvironment(tt.env, "engines"), logger.WithOutput(buf))
			log.Info("msg")

			if tt.json {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, tt.wantEnv, entry["env"])
				return
			}
			assert.Contains(t, buf.String(), "env="+tt.wantEnv)
		})
	}
}

func TestWithEnvironment_EmptyServiceIsIgnored(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithEnvironment("dev", ""), logger.WithOutput(buf))
	log.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestWithLevelName(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithLevelName("warn"), logger.WithOutput(buf))
	log.Info("hidden")
	assert.Empty(t, buf.String())
	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	assert.True(t, logger.New(logger.WithLevelName("nope")).Enabled(t.Context(), slog.LevelInfo))
}

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logger.Production, logger.ParseEnvironment(" PROD "))
	assert.Equal(t, logger.Staging, logger.ParseEnvironment("staging"))
	assert.Equal(t, logger.Development, logger.ParseEnvironment("whatever"))
}
