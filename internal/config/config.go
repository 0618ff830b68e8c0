package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Push transports.
const (
	TransportWebsocket = "websocket"
	TransportRedis     = "redis"
)

// Config holds everything the client needs to reach the authority.
type Config struct {
	APIBind        string
	PushTransport  string
	PushPath       string
	RedisAddr      string
	RedisChannel   string
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	RequestTimeout time.Duration
	UserID         int64
	LogFile        string
	LogLevel       string
	LogFormat      string
	GridColumns    int
}

const (
	defaultConfigPath     = "~/.config/seatlock/config.toml"
	defaultLogFile        = "~/.local/state/seatlock/seatlock.log"
	defaultAPIBind        = "127.0.0.1:8000"
	defaultPushPath       = "/ws"
	defaultRedisAddr      = "127.0.0.1:6379"
	defaultRedisChannel   = "seatlock:updates"
	defaultPollInterval   = 3 * time.Second
	defaultReconnectDelay = 3 * time.Second
	defaultRequestTimeout = 5 * time.Second
	defaultGridColumns    = 10
	envPrefix             = "SEATLOCK"
)

// Default returns the configuration used when no file or env vars are present.
func Default() Config {
	return Config{
		APIBind:        defaultAPIBind,
		PushTransport:  TransportWebsocket,
		PushPath:       defaultPushPath,
		RedisAddr:      defaultRedisAddr,
		RedisChannel:   defaultRedisChannel,
		PollInterval:   defaultPollInterval,
		ReconnectDelay: defaultReconnectDelay,
		RequestTimeout: defaultRequestTimeout,
		UserID:         1,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       "info",
		LogFormat:      "json",
		GridColumns:    defaultGridColumns,
	}
}

// fileConfig mirrors config.toml. Durations are strings like "3s".
type fileConfig struct {
	APIURL         string `toml:"api_url"`
	PushTransport  string `toml:"push_transport"`
	PushPath       string `toml:"push_path"`
	RedisAddr      string `toml:"redis_addr"`
	RedisChannel   string `toml:"redis_channel"`
	PollInterval   string `toml:"poll_interval"`
	ReconnectDelay string `toml:"reconnect_delay"`
	RequestTimeout string `toml:"request_timeout"`
	UserID         int64  `toml:"user_id"`
	LogFile        string `toml:"log_file"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	GridColumns    int    `toml:"grid_columns"`
}

// envOverrides are read from SEATLOCK_* variables. Unset variables stay nil.
type envOverrides struct {
	APIURL         *string        `envconfig:"API_URL"`
	PushTransport  *string        `envconfig:"PUSH_TRANSPORT"`
	PushPath       *string        `envconfig:"PUSH_PATH"`
	RedisAddr      *string        `envconfig:"REDIS_ADDR"`
	RedisChannel   *string        `envconfig:"REDIS_CHANNEL"`
	PollInterval   *time.Duration `envconfig:"POLL_INTERVAL"`
	ReconnectDelay *time.Duration `envconfig:"RECONNECT_DELAY"`
	RequestTimeout *time.Duration `envconfig:"REQUEST_TIMEOUT"`
	UserID         *int64         `envconfig:"USER_ID"`
	LogFile        *string        `envconfig:"LOG_FILE"`
	LogLevel       *string        `envconfig:"LOG_LEVEL"`
	LogFormat      *string        `envconfig:"LOG_FORMAT"`
	GridColumns    *int           `envconfig:"GRID_COLUMNS"`
}

// Load reads the TOML config at path (or the default location), falling back
// to defaults when the file is missing, then applies SEATLOCK_* environment
// overrides. A .env file in the working directory is loaded first if present;
// it never overrides variables already set.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.loadFile(resolved); err != nil {
		return Config{}, err
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.APIBind, raw.APIURL)
	setString(&c.PushTransport, strings.ToLower(raw.PushTransport))
	setString(&c.PushPath, raw.PushPath)
	setString(&c.RedisAddr, raw.RedisAddr)
	setString(&c.RedisChannel, raw.RedisChannel)
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.LogFormat, raw.LogFormat)
	if strings.TrimSpace(raw.LogFile) != "" {
		c.LogFile = mustExpand(raw.LogFile)
	}
	if raw.UserID != 0 {
		c.UserID = raw.UserID
	}
	if raw.GridColumns != 0 {
		c.GridColumns = raw.GridColumns
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &c.PollInterval},
		{"reconnect_delay", raw.ReconnectDelay, &c.ReconnectDelay},
		{"request_timeout", raw.RequestTimeout, &c.RequestTimeout},
	}
	for _, d := range durations {
		value := strings.TrimSpace(d.raw)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if env.APIURL != nil {
		setString(&c.APIBind, *env.APIURL)
	}
	if env.PushTransport != nil {
		setString(&c.PushTransport, strings.ToLower(*env.PushTransport))
	}
	if env.PushPath != nil {
		setString(&c.PushPath, *env.PushPath)
	}
	if env.RedisAddr != nil {
		setString(&c.RedisAddr, *env.RedisAddr)
	}
	if env.RedisChannel != nil {
		setString(&c.RedisChannel, *env.RedisChannel)
	}
	if env.PollInterval != nil {
		c.PollInterval = *env.PollInterval
	}
	if env.ReconnectDelay != nil {
		c.ReconnectDelay = *env.ReconnectDelay
	}
	if env.RequestTimeout != nil {
		c.RequestTimeout = *env.RequestTimeout
	}
	if env.UserID != nil {
		c.UserID = *env.UserID
	}
	if env.LogFile != nil && strings.TrimSpace(*env.LogFile) != "" {
		c.LogFile = mustExpand(*env.LogFile)
	}
	if env.LogLevel != nil {
		setString(&c.LogLevel, *env.LogLevel)
	}
	if env.LogFormat != nil {
		setString(&c.LogFormat, *env.LogFormat)
	}
	if env.GridColumns != nil {
		c.GridColumns = *env.GridColumns
	}
	return nil
}

// Validate rejects values the client cannot run with.
func (c Config) Validate() error {
	switch c.PushTransport {
	case TransportWebsocket, TransportRedis:
	default:
		return fmt.Errorf("invalid push_transport %q: want %s or %s", c.PushTransport, TransportWebsocket, TransportRedis)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid poll_interval %s: must be positive", c.PollInterval)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("invalid reconnect_delay %s: must be positive", c.ReconnectDelay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request_timeout %s: must be positive", c.RequestTimeout)
	}
	if c.UserID <= 0 {
		return fmt.Errorf("invalid user_id %d: must be positive", c.UserID)
	}
	if c.GridColumns <= 0 {
		return fmt.Errorf("invalid grid_columns %d: must be positive", c.GridColumns)
	}
	return nil
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
