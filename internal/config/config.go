package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	commoncfg "github.com/JerraForge/hydroponic-backend/common/config"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config hydroponic-data (HTTP API) configuration.
type Config struct {
	HTTP struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"http"`
	DBEnabled bool                     `yaml:"db_enabled"`
	Database  commoncfg.DatabaseConfig `yaml:"database"`
	Redis     RedisConfig              `yaml:"redis"`
	MQTT      MQTTConfig               `yaml:"mqtt"`
	Log       struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Query QueryConfig `yaml:"query"`
}

// RedisConfig Redis stream for measurement-created events.
type RedisConfig struct {
	commoncfg.RedisConfig `yaml:",inline"`
	Enabled               bool   `yaml:"enabled"`
	Stream                string `yaml:"stream"`
	StreamMaxLen          int64  `yaml:"stream_max_len"`
}

// MQTTConfig sensor ingestion over MQTT (disabled by default).
type MQTTConfig struct {
	commoncfg.MQTTConfig `yaml:",inline"`
	Enabled              bool   `yaml:"enabled"`
	Topic                string `yaml:"topic"` // e.g. "hydroponic/+/+/measurements"
}

// QueryConfig measurement read-path tuning.
type QueryConfig struct {
	PageSize       int    `yaml:"page_size"`
	ReportTimezone string `yaml:"report_timezone"` // calendar-date filters are evaluated in this zone
	ExportMaxRows  int    `yaml:"export_max_rows"`
}

// Load builds the config: defaults, then CONFIG_FILE (YAML) if set, then environment.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if _, err := time.LoadLocation(cfg.Query.ReportTimezone); err != nil {
		return nil, fmt.Errorf("invalid QUERY_REPORT_TIMEZONE %q: %w", cfg.Query.ReportTimezone, err)
	}
	return cfg, nil
}

// Location resolves Query.ReportTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Query.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.ReadTimeout = 30 * time.Second
	cfg.HTTP.WriteTimeout = 60 * time.Second
	cfg.HTTP.ShutdownTimeout = 5 * time.Second

	// Falls back to the in-memory store when the DB is unreachable.
	cfg.DBEnabled = true
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "hydroponic"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 20
	cfg.Database.MaxIdle = 5

	cfg.Redis.Enabled = false
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.Stream = "hydroponic:measurements:stream"
	cfg.Redis.StreamMaxLen = 100000

	cfg.MQTT.Enabled = false
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "hydroponic-data"
	cfg.MQTT.QoS = 1
	cfg.MQTT.Topic = "hydroponic/+/+/measurements"

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	cfg.Query.PageSize = 10
	cfg.Query.ReportTimezone = "UTC"
	cfg.Query.ExportMaxRows = 10000
	return cfg
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ReadTimeout = parseDuration(os.Getenv("HTTP_READ_TIMEOUT"), cfg.HTTP.ReadTimeout)
	cfg.HTTP.WriteTimeout = parseDuration(os.Getenv("HTTP_WRITE_TIMEOUT"), cfg.HTTP.WriteTimeout)
	cfg.HTTP.ShutdownTimeout = parseDuration(os.Getenv("HTTP_SHUTDOWN_TIMEOUT"), cfg.HTTP.ShutdownTimeout)

	cfg.DBEnabled = parseBool(os.Getenv("DB_ENABLED"), cfg.DBEnabled)
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis.Enabled = parseBool(os.Getenv("REDIS_ENABLED"), cfg.Redis.Enabled)
	cfg.Redis.RedisConfig.LoadFromEnv("REDIS")
	cfg.Redis.Stream = getEnv("REDIS_STREAM", cfg.Redis.Stream)
	cfg.Redis.StreamMaxLen = int64(parseInt(os.Getenv("REDIS_STREAM_MAX_LEN"), int(cfg.Redis.StreamMaxLen)))

	cfg.MQTT.Enabled = parseBool(os.Getenv("MQTT_ENABLED"), cfg.MQTT.Enabled)
	cfg.MQTT.MQTTConfig.LoadFromEnv("MQTT")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", cfg.MQTT.Topic)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Query.PageSize = parseInt(os.Getenv("QUERY_PAGE_SIZE"), cfg.Query.PageSize)
	cfg.Query.ReportTimezone = getEnv("QUERY_REPORT_TIMEZONE", cfg.Query.ReportTimezone)
	cfg.Query.ExportMaxRows = parseInt(os.Getenv("QUERY_EXPORT_MAX_ROWS"), cfg.Query.ExportMaxRows)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
