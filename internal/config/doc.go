// Package config loads, normalizes, and validates lattice configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from the default location or an explicit
// path. The Config type centralizes every knob the CLI, proxy, and daemon
// need: server endpoint and spawn settings, logging output, the call-history
// database, and artist appearance defaults.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
