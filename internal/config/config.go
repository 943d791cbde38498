package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/capacity"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Calendar CalendarConfig `yaml:"calendar" toml:"calendar"`
	Worker   WorkerDefaults `yaml:"worker" toml:"worker"`
	Lock     LockConfig     `yaml:"lock" toml:"lock"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type CalendarConfig struct {
	// Timezone is the organization-wide IANA zone every day is computed in.
	Timezone string `yaml:"timezone" toml:"timezone"`
}

// WorkerDefaults fill in what a worker record leaves unset.
type WorkerDefaults struct {
	Schedule           string  `yaml:"schedule" toml:"schedule"`
	LunchStart         string  `yaml:"lunch_start" toml:"lunch_start"`
	LunchEnd           string  `yaml:"lunch_end" toml:"lunch_end"`
	DailyCapacityHours float64 `yaml:"daily_capacity_hours" toml:"daily_capacity_hours"`
	MorningDeliveryCap float64 `yaml:"morning_delivery_cap" toml:"morning_delivery_cap"`
}

type LockConfig struct {
	Backend   string `yaml:"backend" toml:"backend"` // "local" | "redis"
	RedisAddr string `yaml:"redis_addr" toml:"redis_addr"`
	TTLMs     int    `yaml:"ttl_ms" toml:"ttl_ms"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "auto" | "console" | "json"
}

type MetricsConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: defaultDBPath()},
		Calendar: CalendarConfig{Timezone: calendar.DefaultTimezone},
		Worker: WorkerDefaults{
			Schedule:           "9h-17h",
			LunchStart:         "12h",
			LunchEnd:           "13h",
			DailyCapacityHours: 7,
			MorningDeliveryCap: 2,
		},
		Lock:    LockConfig{Backend: "local", RedisAddr: "localhost:6379", TTLMs: 30000},
		Log:     LogConfig{Level: "info", Format: "auto"},
		Metrics: MetricsConfig{Addr: ":9090"},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "workload.db"
	}
	return filepath.Join(home, ".workload", "workload.db")
}

// Load reads defaults, then the file at path when one is given, then the
// environment. The file format follows its extension; YAML files may use
// ${ENV_VAR} placeholders.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			data = []byte(os.ExpandEnv(string(data)))
			err = yaml.Unmarshal(data, &cfg)
		case ".toml":
			err = toml.Unmarshal(data, &cfg)
		default:
			return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", filepath.Ext(path))
		}
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WORKLOAD_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("WORKLOAD_TZ"); v != "" {
		cfg.Calendar.Timezone = v
	}
	if v := os.Getenv("WORKLOAD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WORKLOAD_LOCK_BACKEND"); v != "" {
		cfg.Lock.Backend = v
	}
	if v := os.Getenv("WORKLOAD_REDIS_ADDR"); v != "" {
		cfg.Lock.RedisAddr = v
	}
	if v := os.Getenv("WORKLOAD_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("WORKLOAD_DAILY_CAPACITY"); v != "" {
		if h, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Worker.DailyCapacityHours = h
		}
	}
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if _, err := calendar.New(c.Calendar.Timezone); err != nil {
		return err
	}
	if _, err := c.CapacityDefaults(); err != nil {
		return err
	}
	switch c.Lock.Backend {
	case "local":
	case "redis":
		if c.Lock.RedisAddr == "" {
			return fmt.Errorf("lock backend redis needs redis_addr")
		}
	default:
		return fmt.Errorf("unknown lock backend %q (want local or redis)", c.Lock.Backend)
	}
	return nil
}

// CapacityDefaults converts the worker defaults for the capacity package.
func (c *Config) CapacityDefaults() (capacity.Defaults, error) {
	start, err := calendar.ParseClock(c.Worker.LunchStart)
	if err != nil {
		return capacity.Defaults{}, fmt.Errorf("worker lunch_start: %w", err)
	}
	end, err := calendar.ParseClock(c.Worker.LunchEnd)
	if err != nil {
		return capacity.Defaults{}, fmt.Errorf("worker lunch_end: %w", err)
	}
	lunch := calendar.Window{Start: start, End: end}
	if !lunch.Valid() {
		return capacity.Defaults{}, fmt.Errorf("worker lunch %s is empty or inverted", lunch)
	}
	if c.Worker.DailyCapacityHours <= 0 || c.Worker.DailyCapacityHours > 24 {
		return capacity.Defaults{}, fmt.Errorf("worker daily_capacity_hours %.2f must be in (0, 24]", c.Worker.DailyCapacityHours)
	}
	return capacity.Defaults{DailyCapacity: c.Worker.DailyCapacityHours, Lunch: lunch}, nil
}

func (c *Config) LockTTL() time.Duration {
	if c.Lock.TTLMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Lock.TTLMs) * time.Millisecond
}
