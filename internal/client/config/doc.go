// Package config loads runtime configuration for the evote CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment (see parseEnv): EVOTE_* variables, read from a dotenv file
//     (-env, or ./.env when present) and then from the process environment.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-d string   SQLite database file
//	-t int      request timeout (seconds)
//	-p int      candidates per page
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds. The deadline is RFC 3339 or a zone-less local time:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "request_timeout": "10s",
//	  "database_dsn": "evote.db",
//	  "election_deadline": "2025-12-31T23:59:59",
//	  "page_size": 5,
//	  "message_ttl": "3s",
//	  "log_level": "info",
//	  "countdown_interval": "1s"
//	}
//
// # Environment
//
//	EVOTE_SERVER_URL, EVOTE_REQUEST_TIMEOUT, EVOTE_DATABASE_DSN,
//	EVOTE_ELECTION_DEADLINE, EVOTE_PAGE_SIZE, EVOTE_MESSAGE_TTL,
//	EVOTE_LOG_LEVEL, EVOTE_COUNTDOWN_INTERVAL
//
// Invalid values panic at load time.
package config
