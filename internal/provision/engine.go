package provision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/mlenv/internal/config"
	"git.home.luguber.info/inful/mlenv/internal/logfields"
	"git.home.luguber.info/inful/mlenv/internal/metrics"
)

// StepErrorKind enumerates structured step error categories.
type StepErrorKind string

const (
	StepErrorFatal    StepErrorKind = "fatal"    // Build must abort.
	StepErrorCanceled StepErrorKind = "canceled" // Context cancellation.
)

// StepError is a structured error carrying category and underlying cause.
type StepError struct {
	Kind StepErrorKind
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s step %s: %v", e.Kind, e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

func newFatalStepError(step string, err error) *StepError {
	return &StepError{Kind: StepErrorFatal, Step: step, Err: err}
}
func newCanceledStepError(step string, err error) *StepError {
	return &StepError{Kind: StepErrorCanceled, Step: step, Err: err}
}

// StepExecutor materializes a single dependency step.
type StepExecutor interface {
	Execute(ctx context.Context, step config.Step) error
}

// Engine walks a Plan strictly in order, executing each step exactly once.
// There are no retries and no rollback: the first failing step aborts the
// run, and whatever the earlier steps installed is left in place. The
// contract assumes execution against a pristine base image.
type Engine struct {
	plan     *Plan
	executor StepExecutor
	recorder metrics.Recorder
}

// NewEngine creates an engine for the plan with the default executor.
func NewEngine(plan *Plan) *Engine {
	return &Engine{
		plan:     plan,
		executor: NewExecutor(plan.Workspace),
		recorder: metrics.NoopRecorder{},
	}
}

// WithExecutor injects a custom step executor (for testing).
func (e *Engine) WithExecutor(exec StepExecutor) *Engine {
	e.executor = exec
	return e
}

// WithRecorder injects a metrics recorder.
func (e *Engine) WithRecorder(r metrics.Recorder) *Engine {
	e.recorder = r
	return e
}

// Run executes the plan. It always returns a Report describing how far the
// run got; the error is non-nil when the run aborted.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	report, err := NewReport(e.plan)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	for _, step := range e.plan.Steps {
		select {
		case <-ctx.Done():
			se := newCanceledStepError(step.Name, ctx.Err())
			report.finish(StatusCanceled, time.Since(start))
			e.recorder.IncProvisionOutcome(string(StatusCanceled))
			return report, se
		default:
		}

		slog.Info("Executing provisioning step", logfields.Step(step.Name), logfields.Kind(string(step.Kind)))
		t0 := time.Now()
		stepErr := e.executor.Execute(ctx, step)
		dur := time.Since(t0)

		e.recorder.ObserveStepDuration(step.Name, dur)
		if stepErr != nil {
			e.recorder.IncStepResult(step.Name, metrics.ResultFatal)
			report.recordStep(step, StatusFailed, dur, stepErr)
			report.finish(StatusFailed, time.Since(start))
			e.recorder.IncProvisionOutcome(string(StatusFailed))
			e.recorder.ObserveProvisionDuration(time.Since(start))
			slog.Error("Provisioning step failed", logfields.Step(step.Name), logfields.Error(stepErr), logfields.DurationMS(float64(dur.Milliseconds())))
			return report, newFatalStepError(step.Name, stepErr)
		}

		e.recorder.IncStepResult(step.Name, metrics.ResultSuccess)
		report.recordStep(step, StatusSucceeded, dur, nil)
		slog.Info("Provisioning step completed", logfields.Step(step.Name), logfields.DurationMS(float64(dur.Milliseconds())))
	}

	report.finish(StatusSucceeded, time.Since(start))
	e.recorder.IncProvisionOutcome(string(StatusSucceeded))
	e.recorder.ObserveProvisionDuration(time.Since(start))
	return report, nil
}
