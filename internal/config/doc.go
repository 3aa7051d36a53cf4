// Package config loads, normalizes, and validates bindery's TOML
// configuration. Secrets such as the source spreadsheet URL can come from the
// environment or a .env file instead of the config file.
package config
