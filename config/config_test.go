package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := writeFile(t, `
wal:
  dir: /var/lib/ordercore/wal
  segment_duration: 30m
kafka:
  enabled: true
  client: kafka-go
  brokers: ["k1:9092", "k2:9092"]
snapshot:
  interval: 15s
risk:
  max_open_size: 1000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/ordercore/wal", cfg.WAL.Dir)
	assert.Equal(t, 30*time.Minute, cfg.WAL.SegmentDuration)
	assert.Equal(t, int64(64<<20), cfg.WAL.SegmentSize)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "kafka-go", cfg.Kafka.Client)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "order-events", cfg.Kafka.Topic)
	assert.Equal(t, 15*time.Second, cfg.Snapshot.Interval)
	assert.Equal(t, int64(1000), cfg.Risk.MaxOpenSize)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ORDERCORE_KAFKA_BROKERS", "a:1, b:2,")
	t.Setenv("ORDERCORE_KAFKA_ENABLED", "true")
	t.Setenv("ORDERCORE_GRPC_ADDR", ":9999")
	t.Setenv("ORDERCORE_RISK_MAX_OPEN_SIZE", "42")
	t.Setenv("ORDERCORE_SNAPSHOT_INTERVAL", "2m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, ":9999", cfg.GRPC.Addr)
	assert.Equal(t, int64(42), cfg.Risk.MaxOpenSize)
	assert.Equal(t, 2*time.Minute, cfg.Snapshot.Interval)
}

func TestEnvOverrideParseError(t *testing.T) {
	t.Setenv("ORDERCORE_RISK_MAX_OPEN_SIZE", "lots")
	_, err := Load("")
	assert.ErrorContains(t, err, "ORDERCORE_RISK_MAX_OPEN_SIZE")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"level":     func(c *Config) { c.Logging.Level = "loud" },
		"wal dir":   func(c *Config) { c.WAL.Dir = "" },
		"ring":      func(c *Config) { c.Pool.RetireRingSize = 1000 },
		"client":    func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Client = "franz" },
		"no broker": func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil },
		"risk":      func(c *Config) { c.Risk.MaxOpenSize = -1 },
		"interval":  func(c *Config) { c.Snapshot.Interval = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "wal: [unterminated"))
	assert.ErrorContains(t, err, "parse")
}
