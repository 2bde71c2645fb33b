package platform

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/dibs-cli/dibs/pkg/errors"
)

// Runner executes external helper commands. The darwin handler shells out
// to duti/osascript/mdls; abstracting execution lets tests substitute
// canned output.
type Runner interface {
	// Run executes name with args and returns trimmed stdout. A non-nil
	// error carries stderr in its message when available.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// LookPath reports where name resolves on PATH, or an error when it
	// does not.
	LookPath(name string) (string, error)
}

// execRunner runs commands through os/exec, bounding every call with a
// fixed timeout so no platform call blocks indefinitely.
type execRunner struct {
	timeout time.Duration
}

// NewExecRunner returns a Runner bounding each command with timeout.
func NewExecRunner(timeout time.Duration) Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &execRunner{timeout: timeout}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", errors.Newf(errors.ErrPlatformFailure,
			"%s timed out after %s", name, r.timeout)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.Wrapf(err, classifyExecFailure(msg), "%s failed: %s", name, msg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (r *execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// classifyExecFailure maps helper-tool stderr to the error taxonomy:
// permission wording becomes ACCESS_DENIED, everything else is the generic
// platform-failure bucket.
func classifyExecFailure(stderr string) errors.ErrorCode {
	lower := strings.ToLower(stderr)
	for _, marker := range []string{"not permitted", "permission denied", "access is denied", "not allowed"} {
		if strings.Contains(lower, marker) {
			return errors.ErrAccessDenied
		}
	}
	return errors.ErrPlatformFailure
}
