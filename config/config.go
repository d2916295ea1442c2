// Package config loads engine settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	serviceName = "matchcore"
	envPrefix   = "MATCHCORE"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	WAL      WALConfig      `mapstructure:"wal"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Broker   BrokerConfig   `mapstructure:"broker"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type WALConfig struct {
	Dir             string        `mapstructure:"dir"`
	SegmentSize     int64         `mapstructure:"segment_size"`
	SegmentDuration time.Duration `mapstructure:"segment_duration"`
	SyncEveryWrite  bool          `mapstructure:"sync_every_write"`
}

type SnapshotConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Dir      string        `mapstructure:"dir"`
	Interval time.Duration `mapstructure:"interval"`
}

type OutboxConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Dir        string        `mapstructure:"dir"`
	Interval   time.Duration `mapstructure:"interval"`
	BatchSize  int           `mapstructure:"batch_size"`
	MaxRetries uint32        `mapstructure:"max_retries"`
}

// BrokerConfig selects where outbox events go.
// Kind is one of: sarama, kafka-go, nats, none.
type BrokerConfig struct {
	Kind    string   `mapstructure:"kind"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	NatsURL string   `mapstructure:"nats_url"`
	Subject string   `mapstructure:"subject"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("grpc.addr", ":50051")
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("wal.dir", "./data/wal_entry")
	v.SetDefault("wal.segment_size", 2*1024*1024)
	v.SetDefault("wal.segment_duration", time.Minute)
	v.SetDefault("wal.sync_every_write", false)

	v.SetDefault("snapshot.enabled", true)
	v.SetDefault("snapshot.dir", "./data/snapshots")
	v.SetDefault("snapshot.interval", 30*time.Second)

	v.SetDefault("outbox.enabled", false)
	v.SetDefault("outbox.dir", "./data/wal_exit")
	v.SetDefault("outbox.interval", 250*time.Millisecond)
	v.SetDefault("outbox.batch_size", 256)
	v.SetDefault("outbox.max_retries", 10)

	v.SetDefault("broker.kind", "none")
	v.SetDefault("broker.brokers", []string{"localhost:9092"})
	v.SetDefault("broker.topic", "matchcore.events")
	v.SetDefault("broker.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("broker.subject", "matchcore.events")
}

// Load reads path, or config/matchcore.yaml when path is empty. A missing
// default file is not an error; defaults and MATCHCORE_* variables apply.
// MATCHCORE_WAL_DIR overrides wal.dir.
func Load(path string) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(serviceName)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func (c *Config) Validate() error {
	switch c.Broker.Kind {
	case "none", "sarama", "kafka-go", "nats":
	default:
		return fmt.Errorf("config: unknown broker.kind %q", c.Broker.Kind)
	}
	if c.Broker.Kind != "none" && !c.Outbox.Enabled {
		return errors.New("config: broker.kind requires outbox.enabled")
	}
	if (c.Broker.Kind == "sarama" || c.Broker.Kind == "kafka-go") && len(c.Broker.Brokers) == 0 {
		return errors.New("config: broker.brokers is empty")
	}
	if c.WAL.Dir == "" {
		return errors.New("config: wal.dir is empty")
	}
	if c.Snapshot.Enabled && c.Snapshot.Interval <= 0 {
		return errors.New("config: snapshot.interval must be positive")
	}
	if c.Outbox.Enabled && c.Outbox.Interval <= 0 {
		return errors.New("config: outbox.interval must be positive")
	}
	return nil
}

// Watch re-reads the file on change and hands the new config to onChange.
// Only settings that are safe to change live (the log level) should be
// applied by the callback.
func Watch(v *viper.Viper, log *zap.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("config file changed", zap.String("file", e.Name))

		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Warn("reload config", zap.Error(err))
			return
		}
		if err := cfg.Validate(); err != nil {
			log.Warn("reload config", zap.Error(err))
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
