// Package launch runs the training entry point as a child process and
// routes its output streams per job.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/mlenv/internal/config"
	apperrors "git.home.luguber.info/inful/mlenv/internal/errors"
	"git.home.luguber.info/inful/mlenv/internal/logfields"
	"git.home.luguber.info/inful/mlenv/internal/metrics"
)

// Result describes a completed job invocation.
type Result struct {
	JobID    string
	ExitCode int
	LogPath  string
	Duration time.Duration
}

// Launcher is a thin dispatcher around the training entry point: it resolves
// the child environment, spawns the entry point with the caller's argument
// vector forwarded verbatim, and routes the child's streams per policy. The
// launcher blocks on the child and performs no restarts.
type Launcher struct {
	cfg      config.LauncherConfig
	policy   StreamPolicy
	recorder metrics.Recorder
	stdout   io.Writer
	stderr   io.Writer
}

// NewLauncher creates a launcher for the given configuration.
func NewLauncher(cfg config.LauncherConfig) *Launcher {
	return &Launcher{
		cfg:      cfg,
		policy:   DefaultStreamPolicy(),
		recorder: metrics.NoopRecorder{},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// WithRecorder injects a metrics recorder.
func (l *Launcher) WithRecorder(r metrics.Recorder) *Launcher {
	l.recorder = r
	return l
}

// WithStreamPolicy overrides the default stream routing.
func (l *Launcher) WithStreamPolicy(p StreamPolicy) *Launcher {
	l.policy = p
	return l
}

// WithOutputs overrides the wrapper's own stdout/stderr (for testing).
func (l *Launcher) WithOutputs(stdout, stderr io.Writer) *Launcher {
	l.stdout = stdout
	l.stderr = stderr
	return l
}

// ResolveJobID returns the job identifier: the explicit override when given,
// otherwise the configured scheduler environment variable. The identifier is
// always externally supplied, never generated.
func (l *Launcher) ResolveJobID(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if id := os.Getenv(l.cfg.JobIDEnv); id != "" {
		return id, nil
	}
	return "", apperrors.New(apperrors.CategoryLaunch, apperrors.SeverityFatal,
		fmt.Sprintf("no job identifier: set %s or pass --job-id", l.cfg.JobIDEnv))
}

// CaptureFileName derives the error-stream capture file name for a job.
func CaptureFileName(jobID string) string { return jobID + ".txt" }

// Launch runs the entry point with args appended verbatim. The child's exit
// code is propagated unchanged in the Result; err is non-nil only when the
// wrapper itself failed (environment resolution, spawn failure).
func (l *Launcher) Launch(ctx context.Context, jobID string, args []string) (*Result, error) {
	// Environment resolution must complete before the child starts and
	// before the capture file is created; a bad env file aborts the launch.
	env, err := l.resolveEnv()
	if err != nil {
		return nil, err
	}

	argv := append(append([]string{}, l.cfg.Entrypoint...), args...)
	logPath := filepath.Join(l.cfg.LogDir, CaptureFileName(jobID))

	if l.cfg.Trace {
		slog.Debug("Launching training entry point", logfields.JobID(jobID), slog.Any("argv", argv), logfields.Path(logPath))
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = env

	var capture *os.File
	needCapture := l.policy.Stdout == DestCaptureFile || l.policy.Stderr == DestCaptureFile
	if needCapture {
		capture, err = os.Create(logPath)
		if err != nil {
			return nil, apperrors.WrapError(err, apperrors.CategoryFileSystem, "create capture file").WithContext("path", logPath)
		}
		defer capture.Close()
	}
	cmd.Stdout = l.route(l.policy.Stdout, l.stdout, capture)
	cmd.Stderr = l.route(l.policy.Stderr, l.stderr, capture)

	start := time.Now()
	runErr := cmd.Run()
	dur := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// The child never ran; this is a wrapper failure, not a job failure.
			return nil, apperrors.WrapError(runErr, apperrors.CategoryLaunch, "start training entry point")
		}
		exitCode = exitStatus(exitErr)
	}

	l.recorder.ObserveLaunchDuration(dur)
	l.recorder.IncLaunchExit(exitCode)
	if l.cfg.Trace {
		slog.Debug("Training entry point exited", logfields.JobID(jobID), logfields.ExitCode(exitCode), logfields.DurationMS(float64(dur.Milliseconds())))
	}

	return &Result{JobID: jobID, ExitCode: exitCode, LogPath: logPath, Duration: dur}, nil
}

func (l *Launcher) route(dest Destination, passthrough io.Writer, capture *os.File) io.Writer {
	if dest == DestCaptureFile && capture != nil {
		return capture
	}
	return passthrough
}

// exitStatus maps a child exit to the code the wrapper propagates. Children
// terminated by a signal report 128+signal, matching shell convention so a
// scheduler sees the same value either way.
func exitStatus(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return exitErr.ExitCode()
}

// resolveEnv builds the child's environment: the wrapper's own environment
// with each configured env file merged over it. The mapping is injected via
// exec.Cmd.Env rather than mutating the wrapper's global environment.
func (l *Launcher) resolveEnv() ([]string, error) {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				merged[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	for _, file := range l.cfg.EnvFiles {
		vars, err := godotenv.Read(file)
		if err != nil {
			return nil, apperrors.WrapError(err, apperrors.CategoryConfig, "load environment file").WithContext("path", file)
		}
		for k, v := range vars {
			merged[k] = v
		}
		if l.cfg.Trace {
			slog.Debug("Loaded environment file", logfields.Path(file), slog.Int("vars", len(vars)))
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env, nil
}
