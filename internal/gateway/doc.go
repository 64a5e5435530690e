// Package gateway is the typed client for the conversion backend service.
//
// Each pipeline operation is a single request/response round trip with a
// bounded timeout and no automatic retry: the workflow orchestrator decides
// whether a failure is stage-fatal or retryable. Responses use the standard
// envelope from package apierr; backend failures surface as *apierr.Error
// values so callers can branch on the taxonomy code.
package gateway
