package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// CommandRunner executes an external command, inheriting the provisioner's
// output streams. Injectable so tests can substitute a stub.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

// execRunner is the production CommandRunner backed by os/exec.
type execRunner struct{}

// NewCommandRunner returns the default os/exec-backed runner.
func NewCommandRunner() CommandRunner { return execRunner{} }

func (execRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s failed: %w", name, err)
	}
	return nil
}
