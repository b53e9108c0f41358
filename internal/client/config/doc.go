// Package config loads runtime configuration for the Lost & Found Pet CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-t int      request timeout (seconds)
//	-l string   locale sent as Accept-Language
//	-d string   path of the local session database
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "15s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://www.lostandfoundpetphnompenh.com/api",
//	  "request_timeout": "15s",
//	  "refresh_leeway": "30s",
//	  "locale": "km",
//	  "session_db_path": "/home/me/.lfp/session.db"
//	}
//
// Primary API
//
//   - type Config                       — holds the CLI's runtime settings
//   - func LoadConfig() (*Config, error) — builds and validates Config
//   - func (*Config) LoadDefaults()     — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
