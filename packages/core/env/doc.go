// Package env resolves environment variables for request files.
//
// It provides functionality for:
//   - Reading http-client.env.json and http-client.private.env.json files
//   - Walking from a folder up to the collection root, closest definition first
//   - Recording which folder a variable overrides
//   - Listing the environments visible from a folder
//   - Loading .env files used to seed runtime globals
package env
