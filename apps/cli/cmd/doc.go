// Package cmd implements the reqfile CLI commands using Cobra.
//
// Available commands:
//   - run: Execute requests from .http files
//   - parse: Show how files are parsed without executing them
//   - env list, env vars: Inspect folder-scoped environments
//   - tree: Display a collection's folders, files and environments
//   - history: Show recorded executions
//   - init: Create a new collection with example files
//   - version: Show reqfile version information
//
// Configuration comes from .reqfile.yaml or .reqfile.json and REQFILE_*
// environment variables; persistent flags override both.
package cmd
