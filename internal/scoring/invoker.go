// Package scoring invokes the external risk-scoring computation.
//
// The model lives behind a Python script: each assessment spawns one child
// process, writes a single JSON request to its stdin, closes stdin, and
// parses everything the child wrote to stdout as one JSON document. stderr
// is captured separately and surfaced only as diagnostic text on failure,
// never parsed.
//
// One call is one blocking round trip. There is no retry, pooling, or
// caching of identical feature vectors at this layer; callers that need
// bounded process fan-out must add their own concurrency limiter on top.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/assessment"
)

// Result is the parsed scoring output. Its shape (risk level, probability,
// confidence, ...) is owned by the external computation and opaque here
// beyond "it is a JSON object".
type Result map[string]any

// LaunchError means the scoring process could not be started at all, e.g.
// the interpreter or script is missing.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return fmt.Sprintf("scoring: launch failed: %v", e.Err) }

// Unwrap exposes the underlying exec error.
func (e *LaunchError) Unwrap() error { return e.Err }

// ProcessError means the scoring process started but exited non-zero. Stderr
// carries the script's own diagnostics (tracebacks, import failures).
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("scoring: process exited with code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// ProtocolError means the process exited zero but its stdout was not a valid
// JSON document. Output carries the raw bytes for diagnostics.
type ProtocolError struct {
	Output string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("scoring: invalid model output: %v", e.Err)
}

// Unwrap exposes the underlying JSON error.
func (e *ProtocolError) Unwrap() error { return e.Err }

// request is the single JSON object written to the child's stdin.
type request struct {
	Features assessment.FeatureVector `json:"features"`
}

// Invoker runs the scoring script as a subprocess per call.
type Invoker struct {
	// Python is the interpreter binary (e.g. "python3").
	Python string
	// Script is the path to the scoring script.
	Script string
	// Timeout bounds one round trip; <= 0 means no bound beyond the
	// caller's context.
	Timeout time.Duration
}

// NewInvoker constructs an Invoker for the given interpreter and script.
func NewInvoker(python, script string, timeout time.Duration) *Invoker {
	return &Invoker{Python: python, Script: script, Timeout: timeout}
}

// Assess sends the feature vector to the scoring process and returns the
// parsed result.
//
// Failure modes, each a distinct type the caller can errors.As on:
//   - *LaunchError:   the process could not be started
//   - *ProcessError:  non-zero exit (carries exit code and stderr text)
//   - *ProtocolError: stdout was not one valid JSON object
//
// Context cancellation kills the child; its partial output is discarded.
func (inv *Invoker) Assess(ctx context.Context, features assessment.FeatureVector) (Result, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(request{Features: features})
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, inv.Python, inv.Script)
	cmd.Stdin = bytes.NewReader(payload)

	// The script may fork helpers of its own. The child gets its own process
	// group and cancellation kills the whole group; killing only the direct
	// child would leave grandchildren holding the output pipes, and Wait
	// would block on them past the deadline. WaitDelay is the backstop that
	// force-closes the pipes if anything survives the group kill.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 3 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Err: err}
	}

	if err := cmd.Wait(); err != nil {
		// A group kill surfaces as an ExitError too, so the context verdict
		// comes first: a canceled call reports cancellation, not exit -1.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ProcessError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return nil, &LaunchError{Err: err}
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, &ProtocolError{Output: "", Err: errors.New("empty output")}
	}

	var res Result
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, &ProtocolError{Output: string(out), Err: err}
	}
	return res, nil
}
