package provision

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/mlenv/internal/config"
)

func TestReportSerializationRoundTrip(t *testing.T) {
	plan := planFor([]config.Step{
		{Name: "tools", Kind: config.StepOSPackage, Packages: []string{"unzip"}},
	})
	report, err := NewReport(plan)
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	report.recordStep(plan.Steps[0], StatusSucceeded, 120*time.Millisecond, nil)
	report.finish(StatusSucceeded, 150*time.Millisecond)

	data, err := report.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	restored, err := FromJSON(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}

	if restored.ID != report.ID {
		t.Errorf("id mismatch: %s vs %s", restored.ID, report.ID)
	}
	if restored.PlanHash != report.PlanHash {
		t.Errorf("plan hash mismatch")
	}
	if len(restored.Steps) != 1 || restored.Steps[0].Name != "tools" {
		t.Errorf("unexpected steps: %+v", restored.Steps)
	}
	if restored.Status != StatusSucceeded {
		t.Errorf("unexpected status: %s", restored.Status)
	}
}

func TestReportPersist(t *testing.T) {
	plan := planFor(nil)
	report, err := NewReport(plan)
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	report.finish(StatusSucceeded, time.Millisecond)

	path := filepath.Join(t.TempDir(), "report.json")
	if err := report.Persist(path); err != nil {
		t.Fatalf("persist: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	restored, err := FromJSON(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if restored.ID != report.ID {
		t.Errorf("persisted report id mismatch")
	}
}
