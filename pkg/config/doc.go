// Package config provides configuration management for pwstore.
//
// Values are layered: built-in defaults, then the YAML file at
// $PWSTORE_CONFIG_PATH/pwstore.yml, then PWSTORE_* environment variables.
// The source of every attribute is tracked for `pwstore configuration show`.
//
// # Key Configuration Options
//
//   - PWSTORE_TOKEN_TTL: Bearer token lifetime in seconds
//   - PWSTORE_ALLOWED_ORIGINS: CORS origins
//   - PWSTORE_LOG_LEVEL, PWSTORE_LOG_FORMAT: Logging
//   - PWSTORE_REGISTRATION_ENABLED: Self-service registration
//
// Secrets are never read from the file: DATABASE_URL and
// PWSTORE_TOKEN_SECRET come from the environment only.
package config
