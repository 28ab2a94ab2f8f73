// Package config loads, normalizes, and validates nudge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, merges an optional dotenv file, and honours
// environment fallbacks such as EMAIL_SENDER and STARTUP_NAME. Artifact
// directories that are not set explicitly are derived from paths.data_dir so
// a single setting relocates everything.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
