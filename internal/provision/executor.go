package provision

import (
	"context"
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/mlenv/internal/config"
	gitclient "git.home.luguber.info/inful/mlenv/internal/git"
)

// CheckoutClient materializes pinned source checkouts (implemented by internal/git).
type CheckoutClient interface {
	EnsureWorkspace() error
	CheckoutPinned(name, url, rev string) (string, error)
}

// ResourceFetcher downloads and unpacks resource bundles.
type ResourceFetcher interface {
	Fetch(ctx context.Context, url, dest, unpack string) error
}

// Executor is the production StepExecutor. Each step kind maps to one
// installation action; the executor holds no cross-step state beyond the
// shared workspace directory.
type Executor struct {
	workspace string
	runner    CommandRunner
	checkouts CheckoutClient
	fetcher   ResourceFetcher
}

// NewExecutor creates an executor rooted at the workspace directory.
func NewExecutor(workspace string) *Executor {
	return &Executor{
		workspace: workspace,
		runner:    NewCommandRunner(),
		checkouts: gitclient.NewClient(workspace),
		fetcher:   NewFetcher(),
	}
}

// WithRunner injects a custom command runner (for testing).
func (x *Executor) WithRunner(r CommandRunner) *Executor {
	x.runner = r
	return x
}

// WithCheckoutClient injects a custom checkout client (for testing).
func (x *Executor) WithCheckoutClient(c CheckoutClient) *Executor {
	x.checkouts = c
	return x
}

// WithFetcher injects a custom resource fetcher (for testing).
func (x *Executor) WithFetcher(f ResourceFetcher) *Executor {
	x.fetcher = f
	return x
}

// Execute materializes a single step.
func (x *Executor) Execute(ctx context.Context, step config.Step) error {
	switch step.Kind {
	case config.StepOSPackage:
		args := append([]string{"install", "-y"}, step.Packages...)
		return x.runner.Run(ctx, "", "apt-get", args...)
	case config.StepPythonPackage:
		args := append([]string{"install"}, step.Packages...)
		return x.runner.Run(ctx, "", "pip", args...)
	case config.StepGitCheckout:
		if err := x.checkouts.EnsureWorkspace(); err != nil {
			return err
		}
		repoPath, err := x.checkouts.CheckoutPinned(step.Name, step.URL, step.Rev)
		if err != nil {
			return err
		}
		if step.Install != "" {
			// Install commands run with the checkout as working directory,
			// the same way a Dockerfile RUN would after a cd.
			return x.runner.Run(ctx, repoPath, "sh", "-c", step.Install)
		}
		return nil
	case config.StepResource:
		return x.fetcher.Fetch(ctx, step.URL, filepath.Join(x.workspace, step.Dest), step.Unpack)
	case config.StepCommand:
		return x.runner.Run(ctx, "", "sh", "-c", step.Run)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}
