// Package config loads the server configuration from a YAML file, an
// optional .env file and ORDERCORE_* environment variables, in that
// order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ORDERCORE_"

type Config struct {
	App struct {
		Name string `yaml:"name"`
	} `yaml:"app"`

	Logging struct {
		Level string `yaml:"level"`
		// File enables a rotating log file next to stdout.
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`

	WAL struct {
		Dir             string        `yaml:"dir"`
		SegmentSize     int64         `yaml:"segment_size"`
		SegmentDuration time.Duration `yaml:"segment_duration"`
		SyncEveryWrite  bool          `yaml:"sync_every_write"`
	} `yaml:"wal"`

	Outbox struct {
		Dir    string `yaml:"dir"`
		NoSync bool   `yaml:"no_sync"`
	} `yaml:"outbox"`

	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Client  string   `yaml:"client"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	Broadcast struct {
		Interval   time.Duration `yaml:"interval"`
		MaxRetries uint32        `yaml:"max_retries"`
	} `yaml:"broadcast"`

	Snapshot struct {
		Dir      string        `yaml:"dir"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"snapshot"`

	GRPC struct {
		Addr  string  `yaml:"addr"`
		Rate  float64 `yaml:"rate"`
		Burst int     `yaml:"burst"`
	} `yaml:"grpc"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Risk struct {
		MaxOpenSize int64 `yaml:"max_open_size"`
	} `yaml:"risk"`

	Pool struct {
		RetireRingSize uint64 `yaml:"retire_ring_size"`
	} `yaml:"pool"`

	Epoch struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"epoch"`
}

// Default returns a configuration that runs a single node from ./data.
func Default() *Config {
	var c Config
	c.App.Name = "ordercore"

	c.Logging.Level = "info"
	c.Logging.MaxSizeMB = 100
	c.Logging.MaxBackups = 5
	c.Logging.MaxAgeDays = 28

	c.WAL.Dir = "data/wal"
	c.WAL.SegmentSize = 64 << 20
	c.WAL.SegmentDuration = time.Hour

	c.Outbox.Dir = "data/outbox"

	c.Kafka.Client = "sarama"
	c.Kafka.Brokers = []string{"localhost:9092"}
	c.Kafka.Topic = "order-events"

	c.Broadcast.Interval = 250 * time.Millisecond
	c.Broadcast.MaxRetries = 5

	c.Snapshot.Dir = "data/snapshot"
	c.Snapshot.Interval = time.Minute

	c.GRPC.Addr = ":50051"
	c.GRPC.Rate = 10000
	c.GRPC.Burst = 1000

	c.HTTP.Addr = ":8080"

	c.Pool.RetireRingSize = 4096
	c.Epoch.Interval = 100 * time.Millisecond
	return &c
}

// Load reads path over the defaults, applies .env and environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q", c.Logging.Level)
	}
	if c.WAL.Dir == "" {
		return errors.New("wal.dir is required")
	}
	if c.WAL.SegmentSize <= 0 {
		return errors.New("wal.segment_size must be positive")
	}
	if c.Outbox.Dir == "" {
		return errors.New("outbox.dir is required")
	}
	if c.Snapshot.Dir == "" {
		return errors.New("snapshot.dir is required")
	}
	if c.Snapshot.Interval <= 0 {
		return errors.New("snapshot.interval must be positive")
	}
	if c.Kafka.Enabled {
		switch c.Kafka.Client {
		case "sarama", "kafka-go":
		default:
			return fmt.Errorf("kafka.client %q", c.Kafka.Client)
		}
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka.topic is required")
		}
	}
	if c.GRPC.Addr == "" {
		return errors.New("grpc.addr is required")
	}
	if c.GRPC.Rate < 0 || c.GRPC.Burst < 0 {
		return errors.New("grpc.rate and grpc.burst must not be negative")
	}
	if c.Risk.MaxOpenSize < 0 {
		return errors.New("risk.max_open_size must not be negative")
	}
	if n := c.Pool.RetireRingSize; n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("pool.retire_ring_size %d is not a power of two", n)
	}
	if c.Epoch.Interval <= 0 {
		return errors.New("epoch.interval must be positive")
	}
	return nil
}

// overrideWithEnv applies ORDERCORE_* variables, e.g.
// ORDERCORE_KAFKA_BROKERS=a:9092,b:9092.
func overrideWithEnv(c *Config) error {
	var err error
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	parse := func(name string, fn func(string) error) {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok || err != nil {
			return
		}
		if perr := fn(v); perr != nil {
			err = fmt.Errorf("config: %s%s: %w", envPrefix, name, perr)
		}
	}

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FILE", &c.Logging.File)
	str("WAL_DIR", &c.WAL.Dir)
	str("OUTBOX_DIR", &c.Outbox.Dir)
	str("SNAPSHOT_DIR", &c.Snapshot.Dir)
	str("KAFKA_CLIENT", &c.Kafka.Client)
	str("KAFKA_TOPIC", &c.Kafka.Topic)
	str("GRPC_ADDR", &c.GRPC.Addr)
	str("HTTP_ADDR", &c.HTTP.Addr)

	parse("KAFKA_ENABLED", func(v string) (perr error) {
		c.Kafka.Enabled, perr = strconv.ParseBool(v)
		return
	})
	parse("KAFKA_BROKERS", func(v string) error {
		c.Kafka.Brokers = splitList(v)
		return nil
	})
	parse("GRPC_RATE", func(v string) (perr error) {
		c.GRPC.Rate, perr = strconv.ParseFloat(v, 64)
		return
	})
	parse("RISK_MAX_OPEN_SIZE", func(v string) (perr error) {
		c.Risk.MaxOpenSize, perr = strconv.ParseInt(v, 10, 64)
		return
	})
	parse("SNAPSHOT_INTERVAL", func(v string) (perr error) {
		c.Snapshot.Interval, perr = time.ParseDuration(v)
		return
	})
	return err
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
