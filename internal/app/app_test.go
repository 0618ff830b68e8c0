package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/seatlock/internal/channel"
	"github.com/five82/seatlock/internal/config"
)

func TestResolveUserID(t *testing.T) {
	tests := []struct {
		flag, remembered, configured, want int64
	}{
		{5, 3, 2, 5},
		{0, 3, 2, 3},
		{0, 0, 2, 2},
		{0, 0, 0, 1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ResolveUserID(tt.flag, tt.remembered, tt.configured))
	}
}

func TestLoadConfig_AppliesOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(Options{
		ConfigPath:   filepath.Join(t.TempDir(), "missing.toml"),
		APIBind:      " 10.1.1.1:9000 ",
		UserID:       4,
		PollInterval: 500 * time.Millisecond,
		LogLevel:     "debug",
	})
	require.NoError(t, err)
	require.Equal(t, "10.1.1.1:9000", cfg.APIBind)
	require.Equal(t, int64(4), cfg.UserID)
	require.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_RejectsBadOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := LoadConfig(Options{
		ConfigPath:   filepath.Join(t.TempDir(), "missing.toml"),
		PollInterval: -time.Second,
	})
	require.ErrorContains(t, err, "poll_interval")
}

func TestBuildDialer(t *testing.T) {
	cfg := config.Default()
	cfg.APIBind = "https://seats.example.com"

	d, closeFn, err := BuildDialer(cfg)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	ws, ok := d.(*channel.WebsocketDialer)
	require.True(t, ok)
	require.Equal(t, "wss://seats.example.com/ws", ws.URL())

	cfg.PushTransport = config.TransportRedis
	d, closeFn, err = BuildDialer(cfg)
	require.NoError(t, err)
	_, ok = d.(*channel.RedisDialer)
	require.True(t, ok)
	require.NoError(t, closeFn())

	cfg.PushTransport = "carrier-pigeon"
	_, _, err = BuildDialer(cfg)
	require.Error(t, err)
}

func TestBuildClient(t *testing.T) {
	cfg := config.Default()
	cfg.APIBind = "127.0.0.1:8123"
	client, err := BuildClient(cfg)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8123", client.BaseURL().String())
}
