// Package config loads, normalizes, and validates statewatch
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such
// as STATEWATCH_SMTP_PASSWORD. The Config type centralizes every knob
// the CLI and serve mode need, so downstream code receives sanitized
// paths, canonical log formats, and clear validation errors.
package config
