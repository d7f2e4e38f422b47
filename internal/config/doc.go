// Package config loads, validates, and defaults the TOML configuration file
// plus environment-supplied credentials.
package config
