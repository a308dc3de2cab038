package provision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mlenv/internal/config"
	"git.home.luguber.info/inful/mlenv/internal/metrics"
)

// scriptedExecutor records execution order and fails on a designated step.
type scriptedExecutor struct {
	executed []string
	failOn   string
}

func (s *scriptedExecutor) Execute(_ context.Context, step config.Step) error {
	s.executed = append(s.executed, step.Name)
	if step.Name == s.failOn {
		return errors.New("boom")
	}
	return nil
}

// countingRecorder verifies metric hooks fire without a real registry.
type countingRecorder struct {
	mu          sync.Mutex
	stepResults map[string]metrics.ResultLabel
	outcomes    []string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{stepResults: make(map[string]metrics.ResultLabel)}
}

func (c *countingRecorder) ObserveStepDuration(string, time.Duration) {}
func (c *countingRecorder) IncStepResult(step string, result metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stepResults[step] = result
}
func (c *countingRecorder) ObserveProvisionDuration(time.Duration) {}
func (c *countingRecorder) IncProvisionOutcome(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, outcome)
}
func (c *countingRecorder) ObserveLaunchDuration(time.Duration) {}
func (c *countingRecorder) IncLaunchExit(int)                   {}

func fourStepPlan() *Plan {
	cfg := &config.Config{
		Environment: config.EnvironmentConfig{Workspace: "/tmp/ws"},
		Steps: []config.Step{
			{Name: "tools", Kind: config.StepOSPackage, Packages: []string{"unzip"}},
			{Name: "numerics", Kind: config.StepPythonPackage, Packages: []string{"numpy==1.14.0"}},
			{Name: "framework", Kind: config.StepGitCheckout, URL: "https://example.com/fw.git", Rev: "abc", Install: "pip install -e ."},
			{Name: "corpora", Kind: config.StepCommand, Run: "python -m nltk.downloader punkt", Requires: []string{"numerics"}},
		},
	}
	return NewPlanBuilder(cfg).Build()
}

func TestEngineRunsStepsInDeclaredOrder(t *testing.T) {
	plan := fourStepPlan()
	exec := &scriptedExecutor{}
	report, err := NewEngine(plan).WithExecutor(exec).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"tools", "numerics", "framework", "corpora"}, exec.executed)
	assert.Equal(t, StatusSucceeded, report.Status)
	assert.NotEmpty(t, report.ID)
	assert.NotEmpty(t, report.PlanHash)
	require.Len(t, report.Steps, 4)
	for _, rec := range report.Steps {
		assert.Equal(t, StatusSucceeded, rec.Status)
		assert.Empty(t, rec.Error)
	}
}

func TestEngineHaltsAtFirstFailingStep(t *testing.T) {
	plan := fourStepPlan()
	exec := &scriptedExecutor{failOn: "numerics"}
	report, err := NewEngine(plan).WithExecutor(exec).Run(context.Background())

	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepErrorFatal, stepErr.Kind)
	assert.Equal(t, "numerics", stepErr.Step)

	// Nothing after the failing step executes.
	assert.Equal(t, []string{"tools", "numerics"}, exec.executed)
	assert.Equal(t, StatusFailed, report.Status)
	require.Len(t, report.Steps, 2)
	assert.Equal(t, StatusSucceeded, report.Steps[0].Status)
	assert.Equal(t, StatusFailed, report.Steps[1].Status)
	assert.Contains(t, report.Steps[1].Error, "boom")
}

func TestEngineHonorsCancellation(t *testing.T) {
	plan := fourStepPlan()
	exec := &scriptedExecutor{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewEngine(plan).WithExecutor(exec).Run(ctx)

	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepErrorCanceled, stepErr.Kind)
	assert.Empty(t, exec.executed)
	assert.Equal(t, StatusCanceled, report.Status)
}

func TestEngineReportsMetrics(t *testing.T) {
	plan := fourStepPlan()
	recorder := newCountingRecorder()
	_, err := NewEngine(plan).WithExecutor(&scriptedExecutor{failOn: "framework"}).WithRecorder(recorder).Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, metrics.ResultSuccess, recorder.stepResults["tools"])
	assert.Equal(t, metrics.ResultSuccess, recorder.stepResults["numerics"])
	assert.Equal(t, metrics.ResultFatal, recorder.stepResults["framework"])
	assert.Equal(t, []string{string(StatusFailed)}, recorder.outcomes)
}
