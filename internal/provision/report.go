package provision

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mlenv/internal/config"
)

// RunStatus enumerates terminal provisioning run states.
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
	StatusCanceled  RunStatus = "canceled"
)

// Report is a complete record of one provisioning run: identity, the plan
// hash it executed, and the per-step outcomes up to the point the run ended.
type Report struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	PlanHash  string       `json:"plan_hash"`
	Workspace string       `json:"workspace"`
	Steps     []StepRecord `json:"steps"`
	Status    RunStatus    `json:"status"`
	Duration  int64        `json:"duration_ms"`
}

// StepRecord captures one executed step's outcome.
type StepRecord struct {
	Name     string          `json:"name"`
	Kind     config.StepKind `json:"kind"`
	Status   RunStatus       `json:"status"`
	Duration int64           `json:"duration_ms"`
	Error    string          `json:"error,omitempty"`
}

// NewReport creates a report bound to the plan's hash with a fresh run ID.
func NewReport(plan *Plan) (*Report, error) {
	hash, err := plan.Hash()
	if err != nil {
		return nil, err
	}
	return &Report{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		PlanHash:  hash,
		Workspace: plan.Workspace,
		Steps:     make([]StepRecord, 0, len(plan.Steps)),
	}, nil
}

func (r *Report) recordStep(step config.Step, status RunStatus, dur time.Duration, err error) {
	rec := StepRecord{
		Name:     step.Name,
		Kind:     step.Kind,
		Status:   status,
		Duration: dur.Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	r.Steps = append(r.Steps, rec)
}

func (r *Report) finish(status RunStatus, total time.Duration) {
	r.Status = status
	r.Duration = total.Milliseconds()
}

// ToJSON serializes the report.
func (r *Report) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a report.
func FromJSON(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// Persist writes the report JSON to path.
func (r *Report) Persist(path string) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
