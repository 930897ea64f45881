// Package config handles configuration loading for beerbot.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. The package applies defaults and validates the result.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	database:
//	  postgres:
//	    password: "${DB_PASSWORD}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to empty strings.
//
// # Configuration Sections
//
// Web server:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Storage backend (selected once at startup):
//
//	database:
//	  backend: "sqlite"        # or "postgres"
//	  path: "beerbot.db"       # sqlite only
//	  postgres:
//	    host: "${DB_HOST}"
//	    user: "${DB_USER}"
//	    password: "${DB_PASSWORD}"
//	    dbname: "beerbot_db"
//	    sslmode: "require"
//
// Chat adapter:
//
//	matrix:
//	  enabled: true
//	  homeserver: "https://matrix.org"
//	  user_id: "@beerbot:matrix.org"
//	  access_token: "${MATRIX_TOKEN}"
//	  allowed_rooms: []        # empty = all joined rooms
//	  command_prefix: "!beer"
//
// Command behavior:
//
//	bot:
//	  auto_register: false     # register unknown users on first drink
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - backend is one of sqlite/postgres
//   - postgres connection parameters when the postgres backend is chosen
//   - matrix credentials when the adapter is enabled
//   - logging level and format values
package config
