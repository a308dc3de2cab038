package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for provisioning and launch metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	IncStepResult(step string, result ResultLabel)
	ObserveProvisionDuration(d time.Duration)
	IncProvisionOutcome(outcome string) // outcome: success|failed|canceled
	ObserveLaunchDuration(d time.Duration)
	IncLaunchExit(code int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveProvisionDuration(time.Duration)    {}
func (NoopRecorder) IncProvisionOutcome(string)                {}
func (NoopRecorder) ObserveLaunchDuration(time.Duration)       {}
func (NoopRecorder) IncLaunchExit(int)                         {}
