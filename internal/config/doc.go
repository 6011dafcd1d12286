// Package config loads, normalizes, and validates StringPuller configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from the first location that exists:
// an explicit --config path, ~/.config/stringpuller/config.toml, or
// ./stringpuller.toml in the working directory.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extension lists, and clear validation errors.
package config
