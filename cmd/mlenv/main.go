package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mlenv/internal/config"
	"git.home.luguber.info/inful/mlenv/internal/history"
	"git.home.luguber.info/inful/mlenv/internal/launch"
	"git.home.luguber.info/inful/mlenv/internal/logfields"
	"git.home.luguber.info/inful/mlenv/internal/provision"
)

var CLI struct {
	Config  string `short:"c" help:"Manifest file path" default:"manifest.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Provision struct {
		Report string `help:"Write a JSON provision report to this path"`
		DryRun bool   `help:"Validate the manifest and print the plan without executing"`
	} `cmd:"" help:"Execute the provisioning manifest against this machine"`

	Plan struct{} `cmd:"" help:"Validate the manifest and print the resolved step plan"`

	Launch struct {
		JobID string   `help:"Job identifier override (default: read from the configured env var)"`
		Args  []string `arg:"" optional:"" passthrough:"" help:"Arguments forwarded verbatim to the training entry point"`
	} `cmd:"" help:"Launch the training entry point and capture its error stream per job"`

	Init struct {
		Force bool `help:"Overwrite existing manifest file"`
	} `cmd:"" help:"Initialize a new manifest file"`

	History struct {
		Job   string `help:"Show entries for a specific job or run identifier"`
		Limit int    `default:"20" help:"Maximum number of entries to show"`
	} `cmd:"" help:"Show recorded provisioning runs and job invocations"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Execute command
	switch ctx.Command() {
	case "provision":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load manifest", logfields.Error(err))
			os.Exit(1)
		}
		if CLI.Provision.DryRun {
			if err := runPlan(cfg); err != nil {
				slog.Error("Plan failed", logfields.Error(err))
				os.Exit(1)
			}
			return
		}
		if err := runProvision(cfg, CLI.Provision.Report); err != nil {
			slog.Error("Provisioning failed", logfields.Error(err))
			os.Exit(1)
		}
	case "plan":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load manifest", logfields.Error(err))
			os.Exit(1)
		}
		if err := runPlan(cfg); err != nil {
			slog.Error("Plan failed", logfields.Error(err))
			os.Exit(1)
		}
	case "launch", "launch <args>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load manifest", logfields.Error(err))
			os.Exit(1)
		}
		code, err := runLaunch(cfg, CLI.Launch.JobID, CLI.Launch.Args)
		if err != nil {
			slog.Error("Launch failed", logfields.Error(err))
			os.Exit(1)
		}
		// The wrapper's exit status is the child's, propagated unchanged.
		os.Exit(code)
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
	case "history":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load manifest", logfields.Error(err))
			os.Exit(1)
		}
		if err := runHistory(cfg, CLI.History.Job, CLI.History.Limit); err != nil {
			slog.Error("History failed", logfields.Error(err))
			os.Exit(1)
		}
	}
}

func runProvision(cfg *config.Config, reportPath string) error {
	plan := provision.NewPlanBuilder(cfg).Build()
	planHash, err := plan.Hash()
	if err != nil {
		return err
	}
	slog.Info("Starting environment provisioning",
		"steps", len(plan.Steps),
		"workspace", plan.Workspace,
		"plan_hash", planHash[:12])

	engine := provision.NewEngine(plan)
	report, runErr := engine.Run(context.Background())

	if report != nil {
		if reportPath != "" {
			if err := report.Persist(reportPath); err != nil {
				slog.Warn("Failed to persist provision report", logfields.Error(err))
			}
		}
		if err := appendHistory(cfg, history.Entry{
			Kind:       history.KindProvision,
			RefID:      report.ID,
			Status:     string(report.Status),
			DurationMS: report.Duration,
		}); err != nil {
			slog.Warn("Failed to record provision run in history", logfields.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	slog.Info("Environment provisioned successfully", logfields.RunID(report.ID), "steps", len(report.Steps))
	return nil
}

func runPlan(cfg *config.Config) error {
	plan := provision.NewPlanBuilder(cfg).Build()
	planHash, err := plan.Hash()
	if err != nil {
		return err
	}
	slog.Info("Resolved provisioning plan", "steps", len(plan.Steps), "workspace", plan.Workspace, "plan_hash", planHash)
	for i, step := range plan.Steps {
		slog.Info("  Step",
			"order", i+1,
			logfields.Name(step.Name),
			logfields.Kind(string(step.Kind)),
			"requires", step.Requires)
	}
	return nil
}

func runLaunch(cfg *config.Config, jobIDOverride string, args []string) (int, error) {
	launcher := launch.NewLauncher(cfg.Launcher)
	jobID, err := launcher.ResolveJobID(jobIDOverride)
	if err != nil {
		return 0, err
	}

	result, err := launcher.Launch(context.Background(), jobID, args)
	if err != nil {
		return 0, err
	}

	if err := appendHistory(cfg, history.Entry{
		Kind:       history.KindLaunch,
		RefID:      result.JobID,
		Status:     launchStatus(result.ExitCode),
		ExitCode:   result.ExitCode,
		LogPath:    result.LogPath,
		DurationMS: result.Duration.Milliseconds(),
	}); err != nil {
		slog.Warn("Failed to record job in history", logfields.Error(err))
	}

	return result.ExitCode, nil
}

func launchStatus(exitCode int) string {
	if exitCode == 0 {
		return "succeeded"
	}
	return "failed"
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing manifest", logfields.Path(configPath), "force", force)
	return config.Init(configPath, force)
}

func runHistory(cfg *config.Config, refID string, limit int) error {
	if cfg.History == nil || cfg.History.Path == "" {
		slog.Warn("History is not configured in the manifest")
		return nil
	}
	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}()

	var entries []history.Entry
	if refID != "" {
		entries, err = store.ByRef(context.Background(), refID)
	} else {
		entries, err = store.Recent(context.Background(), limit)
	}
	if err != nil {
		return err
	}

	slog.Info("History entries", "count", len(entries))
	for _, e := range entries {
		slog.Info("  Entry",
			logfields.Kind(string(e.Kind)),
			"ref", e.RefID,
			"status", e.Status,
			logfields.ExitCode(e.ExitCode),
			logfields.Path(e.LogPath),
			logfields.DurationMS(float64(e.DurationMS)),
			"at", e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// appendHistory records an entry when the optional ledger is configured.
func appendHistory(cfg *config.Config, entry history.Entry) error {
	if cfg.History == nil || cfg.History.Path == "" {
		return nil
	}
	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Append(context.Background(), entry)
}
