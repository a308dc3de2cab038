package config

import (
	"fmt"

	apperrors "git.home.luguber.info/inful/mlenv/internal/errors"
)

// Validate checks manifest invariants before any step executes: unique step
// names, no forward or unknown Requires references, and kind-specific
// required fields. Validation failures abort before any step runs.
func (c *Config) Validate() error {
	seen := make(map[string]int, len(c.Steps))
	for i, s := range c.Steps {
		if s.Name == "" {
			return apperrors.ValidationError(fmt.Sprintf("step %d: name is required", i))
		}
		if _, dup := seen[s.Name]; dup {
			return apperrors.ValidationError(fmt.Sprintf("step %q: duplicate step name", s.Name))
		}
		for _, req := range s.Requires {
			if req == s.Name {
				return apperrors.ValidationError(fmt.Sprintf("step %q: requires itself", s.Name))
			}
			// A step may only depend on artifacts of steps declared strictly earlier.
			if _, ok := seen[req]; !ok {
				return apperrors.ValidationError(fmt.Sprintf("step %q: requires %q which is not declared earlier", s.Name, req))
			}
		}
		if err := s.validateKind(); err != nil {
			return err
		}
		seen[s.Name] = i
	}
	return nil
}

func (s *Step) validateKind() error {
	switch s.Kind {
	case StepOSPackage, StepPythonPackage:
		if len(s.Packages) == 0 {
			return apperrors.ValidationError(fmt.Sprintf("step %q: %s requires at least one package", s.Name, s.Kind))
		}
	case StepGitCheckout:
		if s.URL == "" {
			return apperrors.ValidationError(fmt.Sprintf("step %q: git_checkout requires a url", s.Name))
		}
		if s.Rev == "" {
			return apperrors.ValidationError(fmt.Sprintf("step %q: git_checkout requires a pinned rev", s.Name))
		}
	case StepResource:
		if s.URL == "" {
			return apperrors.ValidationError(fmt.Sprintf("step %q: resource requires a url", s.Name))
		}
		if s.Dest == "" {
			return apperrors.ValidationError(fmt.Sprintf("step %q: resource requires a dest", s.Name))
		}
		switch s.Unpack {
		case "", "zip", "tar.gz":
		default:
			return apperrors.ValidationError(fmt.Sprintf("step %q: unsupported unpack format %q", s.Name, s.Unpack))
		}
	case StepCommand:
		if s.Run == "" {
			return apperrors.ValidationError(fmt.Sprintf("step %q: command requires a run line", s.Name))
		}
	default:
		return apperrors.ValidationError(fmt.Sprintf("step %q: unknown kind %q", s.Name, s.Kind))
	}
	return nil
}
