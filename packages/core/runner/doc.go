// Package runner executes the requests of parsed .http files.
//
// It provides functionality for:
//   - Locating the section that contains a line
//   - Resolving environment, file, section and runtime variables
//   - Substituting variables into the URL, headers and body
//   - Dispatching the request through a pluggable transport
//   - Running post-response scripts and applying their global changes
//   - Running every request of a file in document order
//
// Execution never returns an error to the caller. Every outcome, including
// failures, is reported as a Result whose State is StateCompleted or
// StateFailed.
package runner
