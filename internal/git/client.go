package git

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	apperrors "git.home.luguber.info/inful/mlenv/internal/errors"
	"git.home.luguber.info/inful/mlenv/internal/logfields"
)

// Client handles Git operations for pinned source checkouts
type Client struct {
	workspaceDir string
}

// NewClient creates a new Git client with the specified workspace directory
func NewClient(workspaceDir string) *Client { return &Client{workspaceDir: workspaceDir} }

// WorkspaceDir returns the checkout root.
func (c *Client) WorkspaceDir() string { return c.workspaceDir }

// EnsureWorkspace creates the checkout root if missing.
func (c *Client) EnsureWorkspace() error {
	if err := os.MkdirAll(c.workspaceDir, 0o750); err != nil {
		return apperrors.WrapError(err, apperrors.CategoryFileSystem, "failed to create workspace directory").
			WithContext("path", c.workspaceDir)
	}
	return nil
}

// CheckoutPinned clones the repository under <workspace>/<name> and detaches
// the working tree at the pinned revision. Any existing checkout of the same
// name is removed first so a rebuild always starts from the remote state.
func (c *Client) CheckoutPinned(name, url, rev string) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, name)
	slog.Debug("Cloning repository", logfields.URL(url), logfields.Name(name), logfields.Rev(rev), logfields.Path(repoPath))
	if err := os.RemoveAll(repoPath); err != nil {
		return "", fmt.Errorf("failed to remove existing directory: %w", err)
	}

	// Full clone: the pinned revision is generally not the branch tip, so
	// shallow or single-branch clones cannot be used here.
	repository, err := git.PlainClone(repoPath, false, &git.CloneOptions{URL: url, Progress: os.Stdout})
	if err != nil {
		return "", classifyCloneError(url, err)
	}

	worktree, err := repository.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree for %s: %w", url, err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(rev), Force: true}); err != nil {
		return "", &RevisionNotFoundError{URL: url, Rev: rev, Err: err}
	}

	slog.Info("Repository checked out at pinned revision", logfields.Name(name), logfields.URL(url), logfields.Rev(shortRev(rev)), logfields.Path(repoPath))
	return repoPath, nil
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
