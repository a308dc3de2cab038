package git

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyCloneError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want any
	}{
		{"auth", fmt.Errorf("authentication required"), &AuthError{}},
		{"not found", fmt.Errorf("repository does not exist"), &NotFoundError{}},
		{"protocol", fmt.Errorf("unsupported protocol scheme"), &UnsupportedProtocolError{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyCloneError("https://example.com/repo.git", tc.err)
			switch tc.want.(type) {
			case *AuthError:
				var e *AuthError
				if !errors.As(got, &e) {
					t.Errorf("expected AuthError, got %T", got)
				}
			case *NotFoundError:
				var e *NotFoundError
				if !errors.As(got, &e) {
					t.Errorf("expected NotFoundError, got %T", got)
				}
			case *UnsupportedProtocolError:
				var e *UnsupportedProtocolError
				if !errors.As(got, &e) {
					t.Errorf("expected UnsupportedProtocolError, got %T", got)
				}
			}
		})
	}

	// Unclassified errors keep the clone context wrapping.
	got := classifyCloneError("https://example.com/repo.git", fmt.Errorf("connection reset"))
	if got == nil || got.Error() == "connection reset" {
		t.Errorf("expected wrapped error, got %v", got)
	}
}

func TestRevisionNotFoundError(t *testing.T) {
	cause := fmt.Errorf("object not found")
	err := &RevisionNotFoundError{URL: "https://example.com/repo.git", Rev: "deadbeef", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected cause to unwrap")
	}
}

func TestShortRev(t *testing.T) {
	if got := shortRev("0123456789abcdef"); got != "01234567" {
		t.Errorf("unexpected short rev %q", got)
	}
	if got := shortRev("abc"); got != "abc" {
		t.Errorf("short revs must pass through, got %q", got)
	}
}
