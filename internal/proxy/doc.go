// Package proxy exposes the conversion backend over a local HTTP surface.
// It enforces upload and payload validation before any request reaches the
// backend, applies rate limiting, and normalizes every response into the
// standard success/error envelope.
package proxy
