package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/seatlock/internal/channel"
	"github.com/five82/seatlock/internal/config"
	"github.com/five82/seatlock/internal/logging"
	"github.com/five82/seatlock/internal/notify"
	"github.com/five82/seatlock/internal/prefs"
	"github.com/five82/seatlock/internal/seatapi"
	"github.com/five82/seatlock/internal/ui"
)

// Options configure the seatlock client. Non-zero fields override the config
// file and environment.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses ~/.config/seatlock/prefs.toml
	APIBind      string
	UserID       int64
	PollInterval time.Duration
	LogLevel     string
}

// LoadConfig reads the config and applies the command-line overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIBind); v != "" {
		cfg.APIBind = v
	}
	if opts.UserID != 0 {
		cfg.UserID = opts.UserID
	}
	if opts.PollInterval != 0 {
		cfg.PollInterval = opts.PollInterval
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// BuildClient creates the HTTP client for the configured authority.
func BuildClient(cfg config.Config) (*seatapi.Client, error) {
	client, err := seatapi.NewClient(cfg.APIBind, seatapi.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, fmt.Errorf("init seat client: %w", err)
	}
	return client, nil
}

// BuildDialer creates the push transport. The returned func releases it.
func BuildDialer(cfg config.Config) (channel.Dialer, func() error, error) {
	switch cfg.PushTransport {
	case config.TransportRedis:
		d := channel.NewRedisDialer(cfg.RedisAddr, cfg.RedisChannel)
		return d, d.Close, nil
	case config.TransportWebsocket, "":
		d, err := channel.NewWebsocketDialer(cfg.APIBind, cfg.PushPath, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("init push channel: %w", err)
		}
		return d, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown push transport %q", cfg.PushTransport)
	}
}

// ResolveUserID picks the acting user: an explicit flag wins, then the id
// remembered in prefs, then the configured one.
func ResolveUserID(flag, remembered, configured int64) int64 {
	switch {
	case flag > 0:
		return flag
	case remembered > 0:
		return remembered
	case configured > 0:
		return configured
	}
	return 1
}

// Run boots the seatlock TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(Options{
		ConfigPath:   opts.ConfigPath,
		APIBind:      opts.APIBind,
		PollInterval: opts.PollInterval,
		LogLevel:     opts.LogLevel,
	})
	if err != nil {
		return err
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	// The TUI owns the terminal, so logs always go to the file.
	log, closeLog, err := logging.New(logging.Options{
		File:   cfg.LogFile,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	client, err := BuildClient(cfg)
	if err != nil {
		return err
	}
	dialer, closeDialer, err := BuildDialer(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeDialer() }()

	session, err := NewSession(SessionOptions{
		Source:         client,
		Backend:        client,
		Dialer:         dialer,
		UserID:         ResolveUserID(opts.UserID, userPrefs.UserID, cfg.UserID),
		PollInterval:   cfg.PollInterval,
		ReconnectDelay: cfg.ReconnectDelay,
		RequestTimeout: cfg.RequestTimeout,
		Notices:        notify.NewCenter(0),
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}

	log.Info("seatlock starting",
		zap.String("api", client.BaseURL().String()),
		zap.String("push", cfg.PushTransport),
		zap.Int64("user_id", session.UserID()),
	)
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			log.Warn("session stopped with error", zap.Error(err))
		}
	}()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	return ui.Run(ui.Options{
		Context:   ctx,
		Session:   session,
		Columns:   cfg.GridColumns,
		ThemeName: userPrefs.Theme,
		PrefsPath: prefsPath,
		LogFile:   cfg.LogFile,
		Logger:    log,
	})
}
