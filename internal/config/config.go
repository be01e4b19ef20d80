// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"shelter-guard/internal/domain"
)

type RuntimeConfig struct {
	Dev bool
}

type BusConfig struct {
	ID       string `yaml:"id"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DevicesConfig struct {
	MotionID string `yaml:"motion_id"`
	DoorID   string `yaml:"door_id"`
}

type BotConfig struct {
	Token       string `yaml:"token"`
	ChatID      int64  `yaml:"chat_id"`
	Mode        string `yaml:"mode"`         // polling | noop
	PollTimeout int    `yaml:"poll_timeout"` // long polling timeout, seconds
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // 0 disables the admin server
}

type SchedulerConfig struct {
	BusCheckInterval     time.Duration `yaml:"bus_check_interval"`
	MemorySampleInterval time.Duration `yaml:"memory_sample_interval"`
}

type Config struct {
	Bus       BusConfig       `yaml:"bus"`
	Devices   DevicesConfig   `yaml:"devices"`
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig builds the configuration from, in increasing priority:
// the YAML file at path (optional), a .env file in the working directory (optional)
// and the process environment.
func LoadConfig(path string, dev bool) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		// existing environment wins over .env
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.PollTimeout <= 0 {
		cfg.Bot.PollTimeout = 60
	}
	cfg.Scheduler.BusCheckInterval = normalizeInterval(cfg.Scheduler.BusCheckInterval, 30*time.Second)
	cfg.Scheduler.MemorySampleInterval = normalizeInterval(cfg.Scheduler.MemorySampleInterval, 15*time.Second)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setStr := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setStr("BUS_ID", &cfg.Bus.ID)
	setStr("BUS", &cfg.Bus.Address)
	setStr("LUMI_MOTION_ID", &cfg.Devices.MotionID)
	setStr("LUMI_DOOR_ID", &cfg.Devices.DoorID)
	setStr("TELEGRAM_TOKEN", &cfg.Bot.Token)
	setStr("LOG_LEVEL", &cfg.Log.Level)
	setStr("LOG_FORMAT", &cfg.Log.Format)

	if v, ok := os.LookupEnv("TELEGRAM_CHAT_ID"); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID must be an integer: %v", domain.ErrInvalidConfig, err)
		}
		cfg.Bot.ChatID = id
	}
	if v, ok := os.LookupEnv("ADMIN_PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: ADMIN_PORT must be an integer: %v", domain.ErrInvalidConfig, err)
		}
		cfg.Admin.Port = port
	}
	return nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Bus.ID == "" {
		missing = append(missing, "BUS_ID")
	}
	if c.Bus.Address == "" {
		missing = append(missing, "BUS")
	}
	if c.Devices.MotionID == "" {
		missing = append(missing, "LUMI_MOTION_ID")
	}
	if c.Devices.DoorID == "" {
		missing = append(missing, "LUMI_DOOR_ID")
	}
	if c.Bot.ChatID == 0 {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if c.Bot.Token == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidConfig, strings.Join(missing, ", "))
	}

	switch strings.ToLower(c.Bot.Mode) {
	case "polling", "noop":
	default:
		return fmt.Errorf("%w: unsupported bot.mode %q", domain.ErrInvalidConfig, c.Bot.Mode)
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("%w: admin.port out of range", domain.ErrInvalidConfig)
	}
	return nil
}

func normalizeInterval(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
