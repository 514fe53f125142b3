// Package parser provides parsing functionality for .http request files.
//
// The parser is line oriented and never fails: malformed input degrades
// into dividers, absorbed header lines or missing sections instead of
// errors. All line numbers are 1-indexed and all ranges are half-open.
//
// The parser handles:
//   - Section detection using a three-character marker (### by default)
//   - Request lines with multi-line URL continuation
//   - Header blocks terminated by the first blank line
//   - Body ranges and post-response scripts (> file.js, > {% ... %})
//   - File and section preamble variables (@name=value)
//   - Request options (#@name=value)
//   - Raw HTTP response text
package parser
