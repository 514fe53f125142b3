// Package http provides the network transport for request execution.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts, per client and per request
//   - Redirect handling
//   - Proxy and default headers
//   - Per-request TLS verification toggle
//   - Basic auth credential normalization
package http
