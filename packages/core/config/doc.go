// Package config handles configuration loading and management for reqfile.
//
// It provides functionality for:
//   - Loading configuration from .reqfile.yaml or .reqfile.json files
//   - Searching the working directory, the home directory and ~/.config/reqfile
//   - REQFILE_* environment variable overrides
//   - Default configuration values
package config
