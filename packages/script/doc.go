// Package script runs post-response scripts in a goja JavaScript runtime.
//
// Scripts can call console.log, set runtime globals with
// client.global.set(key, value) and read response.body, which is parsed
// when the response is JSON. Each run is bounded by a wall-clock timeout.
package script
