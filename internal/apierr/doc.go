// Package apierr defines the backend error-code taxonomy, the HTTP status
// mapping, and the JSON response envelope shared by the gateway client and
// the proxy layer.
package apierr
