package provision

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/mlenv/internal/config"
)

// Plan is an immutable execution plan derived from the manifest. It captures
// the ordered step list and the workspace the steps materialize into, so
// ordering is a verifiable data structure rather than incidental script
// order. A Plan is built once and never mutated by the engine.
type Plan struct {
	Workspace string
	Steps     []config.Step
}

// PlanBuilder constructs a Plan from a validated configuration.
type PlanBuilder struct {
	plan Plan
}

// NewPlanBuilder creates a builder with base config.
func NewPlanBuilder(cfg *config.Config) *PlanBuilder {
	return &PlanBuilder{plan: Plan{Workspace: cfg.Environment.Workspace, Steps: cfg.Steps}}
}

// WithWorkspace overrides the workspace root (used by tests and --dry-run).
func (b *PlanBuilder) WithWorkspace(dir string) *PlanBuilder {
	if dir != "" {
		b.plan.Workspace = dir
	}
	return b
}

// Build returns the constructed Plan.
func (b *PlanBuilder) Build() *Plan {
	return &b.plan
}

// Hash computes a deterministic hash of the ordered step list. Two manifests
// with identical steps in identical order hash identically, which is what
// makes a provisioned environment reproducible and comparable.
func (p *Plan) Hash() (string, error) {
	hashInput := struct {
		Workspace string        `json:"workspace"`
		Steps     []config.Step `json:"steps"`
	}{
		Workspace: p.Workspace,
		Steps:     p.Steps,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}
