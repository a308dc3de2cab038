// Package metrics provides observability hooks for provisioning and job
// launch metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection has zero overhead unless a real
// implementation (PrometheusRecorder) is injected. This keeps the hot paths
// free of nil checks and lets tests swap in a verifying recorder.
package metrics
