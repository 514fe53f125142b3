// Package output renders execution results, parsed files, environments
// and collection trees.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//   - YAML: Parsed file dumps
//   - HTTP: Raw response text that parses back with parser.ParseResponse
//
// Flatten projects a collection tree into display rows and Query extracts
// values from JSON response bodies.
package output
