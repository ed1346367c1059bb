// Package config loads runtime configuration for the Moonlight Match CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. MM_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-i int      matching status poll interval (seconds)
//	-d string   local session database path
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://127.0.0.1:3000",
//	  "poll_interval": "5s",
//	  "request_timeout": "10s",
//	  "online_check_interval": "15s",
//	  "db_path": "moonmatch.db",
//	  "default_event_id": "moonlight-gala",
//	  "log_level": "info"
//	}
//
// # Environment
//
//	MM_API_BASE_URL, MM_POLL_INTERVAL, MM_REQUEST_TIMEOUT,
//	MM_ONLINE_CHECK_INTERVAL, MM_DB_PATH, MM_DEFAULT_EVENT_ID, MM_LOG_LEVEL
package config
