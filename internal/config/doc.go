// Package config loads the seatlock client configuration.
//
// # Overview
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, ~/.config/seatlock/config.toml unless a path is given
//  3. SEATLOCK_* environment variables, optionally seeded from a .env file
//
// A missing config file is not an error. Empty or whitespace-only values in
// the file fall through to the defaults.
//
// # Default Values
//
//   - API endpoint: 127.0.0.1:8000
//   - Push transport: websocket at /ws
//   - Redis: 127.0.0.1:6379, channel seatlock:updates
//   - Poll interval: 3s
//   - Reconnect delay: 3s
//   - Request timeout: 5s
//   - User id: 1
//   - Log file: ~/.local/state/seatlock/seatlock.log (json, info)
//   - Grid columns: 10
//
// # TOML Format
//
//	api_url = "127.0.0.1:8000"
//	push_transport = "websocket"   # or "redis"
//	push_path = "/ws"
//	redis_addr = "127.0.0.1:6379"
//	redis_channel = "seatlock:updates"
//	poll_interval = "3s"
//	reconnect_delay = "3s"
//	request_timeout = "5s"
//	user_id = 1
//	log_file = "~/.local/state/seatlock/seatlock.log"
//	log_level = "info"
//	log_format = "json"
//	grid_columns = 10
//
// Durations use Go syntax ("1500ms", "3s"). Tilde expansion is applied to
// log_file and to the config path itself.
//
// # Environment
//
// Each key has an upper-case SEATLOCK_ counterpart, for example
// SEATLOCK_API_URL or SEATLOCK_POLL_INTERVAL. Variables already present in the
// process environment take precedence over .env entries.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML syntax errors and unparseable durations
//   - Environment values of the wrong type
//   - Values Validate rejects (unknown transport, non-positive intervals,
//     user id or grid columns)
package config
