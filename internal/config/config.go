package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/park285/Cheese-Board/internal/obslog"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type AppConfig struct {
	HTTPAddr   string `yaml:"http_addr"`
	CORSOrigin string `yaml:"cors_origin"`

	DisplayBaseURL   string `yaml:"display_base_url"`
	DisplayWSURL     string `yaml:"display_ws_url"`
	DisplayTransport string `yaml:"display_transport"`

	HistoryBackend string `yaml:"history_backend"`
	RedisURL       string `yaml:"redis_url"`
	DatabaseURL    string `yaml:"database_url"`
	HistoryTTLSec  int    `yaml:"history_ttl_sec"`

	PlayerID          string `yaml:"player_id"`
	GameTimeLimitSec  int    `yaml:"game_time_limit_sec"`
	AutoMoveDelayMS   int    `yaml:"auto_move_delay_ms"`
	AutomatedOpponent bool   `yaml:"automated_opponent"`
	AutomatedColor    string `yaml:"automated_color"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogToFile bool   `yaml:"log_to_file"`
	LogFile   string `yaml:"log_file"`
}

func defaults() *AppConfig {
	return &AppConfig{
		HTTPAddr:          "127.0.0.1:8080",
		DisplayTransport:  "auto",
		HistoryBackend:    BackendMemory,
		HistoryTTLSec:     30 * 24 * 3600,
		GameTimeLimitSec:  600,
		AutoMoveDelayMS:   1000,
		AutomatedOpponent: false,
		AutomatedColor:    "black",
		LogLevel:          "info",
		LogFormat:         "legacy",
		LogFile:           obslog.DefaultFile,
	}
}

// Load reads defaults, then CONFIG_FILE (YAML) if set, then environment variables.
// A dotenv file (DOTENV_FILE, default .env) fills variables that are not already set.
func Load() (*AppConfig, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.CORSOrigin, "HTTP_CORS_ORIGIN")
	setString(&cfg.DisplayBaseURL, "DISPLAY_BASE_URL")
	setString(&cfg.DisplayWSURL, "DISPLAY_WS_URL")
	setString(&cfg.DisplayTransport, "DISPLAY_TRANSPORT")
	setString(&cfg.HistoryBackend, "HISTORY_BACKEND")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setPositiveInt(&cfg.HistoryTTLSec, "HISTORY_TTL_SEC")
	setString(&cfg.PlayerID, "PLAYER_ID")
	setPositiveInt(&cfg.GameTimeLimitSec, "GAME_TIME_LIMIT_SEC")
	setPositiveInt(&cfg.AutoMoveDelayMS, "AUTO_MOVE_DELAY_MS")
	setBool(&cfg.AutomatedOpponent, "AUTOMATED_OPPONENT")
	setString(&cfg.AutomatedColor, "AUTOMATED_COLOR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setBool(&cfg.LogToFile, "LOG_TO_FILE")
	setString(&cfg.LogFile, "LOG_FILE")

	cfg.HistoryBackend = strings.ToLower(cfg.HistoryBackend)
	cfg.DisplayTransport = strings.ToLower(cfg.DisplayTransport)
	cfg.AutomatedColor = strings.ToLower(cfg.AutomatedColor)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotenv() error {
	path := strings.TrimSpace(os.Getenv("DOTENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("dotenv file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load dotenv %s: %w", path, err)
	}
	return nil
}

func loadFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) validate() error {
	switch c.HistoryBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis history backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres history backend")
		}
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.HistoryBackend)
	}
	switch c.DisplayTransport {
	case "auto", "http", "ws":
	default:
		return fmt.Errorf("unknown DISPLAY_TRANSPORT %q", c.DisplayTransport)
	}
	switch c.AutomatedColor {
	case "white", "w", "black", "b":
	default:
		return fmt.Errorf("unknown AUTOMATED_COLOR %q", c.AutomatedColor)
	}
	return nil
}

func (c *AppConfig) GameTimeLimit() time.Duration {
	return time.Duration(c.GameTimeLimitSec) * time.Second
}

func (c *AppConfig) AutoMoveDelay() time.Duration {
	return time.Duration(c.AutoMoveDelayMS) * time.Millisecond
}

func (c *AppConfig) HistoryTTL() time.Duration {
	return time.Duration(c.HistoryTTLSec) * time.Second
}

// DisplayEnabled reports whether any remote display endpoint is configured.
func (c *AppConfig) DisplayEnabled() bool {
	return c.DisplayBaseURL != "" || c.DisplayWSURL != ""
}

func (c *AppConfig) LogOptions() obslog.Options {
	return obslog.Options{
		Level:   c.LogLevel,
		Format:  c.LogFormat,
		Console: true,
		ToFile:  c.LogToFile,
		File:    c.LogFile,
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setPositiveInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
