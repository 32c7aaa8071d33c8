// Package config loads, normalizes, and validates songdeck configuration.
//
// Configuration is read from TOML (default ~/.config/songdeck/config.toml, or
// ./songdeck.toml when present), layered over repository defaults, with
// credentials falling back to environment variables. Command-line flags are
// applied by the CLI after Load and re-validated.
package config
