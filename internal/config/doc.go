// Package config loads application configuration from environment variables
// prefixed with SP, optionally overlaid on a YAML config file. Environment
// values always win over file values.
package config
