package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	if cfg.PushTransport != TransportWebsocket || cfg.PushPath != "/ws" {
		t.Fatalf("push = %q %q, want websocket /ws", cfg.PushTransport, cfg.PushPath)
	}
	if cfg.PollInterval != 3*time.Second || cfg.ReconnectDelay != 3*time.Second {
		t.Fatalf("intervals = %s/%s, want 3s/3s", cfg.PollInterval, cfg.ReconnectDelay)
	}
	if cfg.UserID != 1 || cfg.GridColumns != 10 {
		t.Fatalf("UserID=%d GridColumns=%d, want 1 and 10", cfg.UserID, cfg.GridColumns)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  10.0.0.5:9999  "
push_transport = "Redis"
redis_addr = "cache:6379"
redis_channel = "seats"
poll_interval = "1500ms"
reconnect_delay = " 10s "
request_timeout = "2s"
user_id = 42
log_file = "  ~/.seatlock/client.log  "
log_level = "debug"
log_format = "console"
grid_columns = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "10.0.0.5:9999" {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, "10.0.0.5:9999")
	}
	if cfg.PushTransport != TransportRedis || cfg.RedisAddr != "cache:6379" || cfg.RedisChannel != "seats" {
		t.Fatalf("redis settings = %q %q %q", cfg.PushTransport, cfg.RedisAddr, cfg.RedisChannel)
	}
	if cfg.PollInterval != 1500*time.Millisecond || cfg.ReconnectDelay != 10*time.Second || cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("durations = %s %s %s", cfg.PollInterval, cfg.ReconnectDelay, cfg.RequestTimeout)
	}
	if cfg.UserID != 42 || cfg.GridColumns != 5 {
		t.Fatalf("UserID=%d GridColumns=%d", cfg.UserID, cfg.GridColumns)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "console" {
		t.Fatalf("log = %q %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "   "
poll_interval = ""
log_file = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Fatalf("PollInterval = %s, want %s", cfg.PollInterval, defaultPollInterval)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "file-host:1"
user_id = 3
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("SEATLOCK_API_URL", "env-host:2")
	t.Setenv("SEATLOCK_USER_ID", "9")
	t.Setenv("SEATLOCK_POLL_INTERVAL", "750ms")
	t.Setenv("SEATLOCK_PUSH_TRANSPORT", "REDIS")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "env-host:2" {
		t.Fatalf("APIBind = %q, want env value", cfg.APIBind)
	}
	if cfg.UserID != 9 {
		t.Fatalf("UserID = %d, want 9", cfg.UserID)
	}
	if cfg.PollInterval != 750*time.Millisecond {
		t.Fatalf("PollInterval = %s, want 750ms", cfg.PollInterval)
	}
	if cfg.PushTransport != TransportRedis {
		t.Fatalf("PushTransport = %q, want redis", cfg.PushTransport)
	}
}

func TestLoad_DotEnvFileIsRead(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	// Registered so the variable godotenv sets is cleared after the test.
	t.Setenv("SEATLOCK_GRID_COLUMNS", "")
	os.Unsetenv("SEATLOCK_GRID_COLUMNS")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SEATLOCK_GRID_COLUMNS=4\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GridColumns != 4 {
		t.Fatalf("GridColumns = %d, want 4 from .env", cfg.GridColumns)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"toml", `api_url = [`, "parse config"},
		{"duration", `poll_interval = "soon"`, "poll_interval"},
		{"transport", `push_transport = "carrier-pigeon"`, "push_transport"},
		{"user", `user_id = -2`, "user_id"},
		{"columns", `grid_columns = -1`, "grid_columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Chdir(t.TempDir())
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load returned nil error, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoad_BadEnvironmentValueFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("SEATLOCK_USER_ID", "abc")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("Load returned nil error, want env parse error")
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
