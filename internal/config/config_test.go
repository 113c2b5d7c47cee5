package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "hazard-curve-sets", cfg.KafkaSourceTopic)
	assert.Equal(t, "resolved-thresholds", cfg.KafkaSinkTopic)
	assert.Equal(t, "hazard-threshold-etl", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, 1e-10, cfg.ResolveFloor)
	assert.Equal(t, 1, cfg.ResolveParallelism)
	assert.Empty(t, cfg.AlarmProfilePath)
	assert.False(t, cfg.EngineEnabled)
	assert.Empty(t, cfg.EngineBaseURL)
	assert.Equal(t, 5*time.Second, cfg.EngineTimeout)
	assert.Equal(t, 100, cfg.EngineCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("RESOLVE_FLOOR", "1e-6")
	t.Setenv("RESOLVE_PARALLELISM", "8")
	t.Setenv("ENGINE_BASE_URL", "http://oq-engine:8800")
	t.Setenv("ENGINE_TIMEOUT", "10s")
	t.Setenv("ENGINE_CACHE_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 1e-6, cfg.ResolveFloor)
	assert.Equal(t, 8, cfg.ResolveParallelism)
	assert.True(t, cfg.EngineEnabled)
	assert.Equal(t, "http://oq-engine:8800", cfg.EngineBaseURL)
	assert.Equal(t, 10*time.Second, cfg.EngineTimeout)
	assert.Equal(t, 25, cfg.EngineCacheSize)
}

func TestLoad_EngineDisabledOverride(t *testing.T) {
	t.Setenv("ENGINE_BASE_URL", "http://oq-engine:8800")
	t.Setenv("ENGINE_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.EngineEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"zero batch size", "BATCH_SIZE", "0"},
		{"negative floor", "RESOLVE_FLOOR", "-1"},
		{"zero parallelism", "RESOLVE_PARALLELISM", "0"},
		{"zero shutdown timeout", "SHUTDOWN_TIMEOUT", "0s"},
		{"engine enabled without URL", "ENGINE_ENABLED", "true"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestAlarmProfile(t *testing.T) {
	t.Run("default when path is empty", func(t *testing.T) {
		p, err := LoadAlarmProfile("")
		require.NoError(t, err)
		require.Len(t, p.Levels, 3)
		assert.Equal(t, "green", p.Levels[0].Name)
		assert.Equal(t, 0.01, p.Levels[2].Threshold)
	})

	t.Run("from YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.yaml")
		content := "levels:\n  - name: advisory\n    threshold: 0.2\n  - name: alert\n    threshold: 0.02\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		p, err := LoadAlarmProfile(path)
		require.NoError(t, err)
		require.Len(t, p.Levels, 2)
		assert.Equal(t, AlarmLevel{Name: "advisory", Threshold: 0.2}, p.Levels[0])
		assert.Equal(t, AlarmLevel{Name: "alert", Threshold: 0.02}, p.Levels[1])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadAlarmProfile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("duplicate level name", func(t *testing.T) {
		p := AlarmProfile{Levels: []AlarmLevel{
			{Name: "red", Threshold: 0.1},
			{Name: "red", Threshold: 0.01},
		}}
		require.Error(t, p.Validate())
	})

	t.Run("empty profile", func(t *testing.T) {
		require.Error(t, AlarmProfile{}.Validate())
	})
}
