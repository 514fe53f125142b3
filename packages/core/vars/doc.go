// Package vars merges variable scopes and substitutes {{name}} references.
//
// It provides functionality for:
//   - Merging environment, sibling, file, section and runtime scopes
//   - Recursive substitution with cycle detection
//   - Session-scoped runtime globals keyed by collection
package vars
