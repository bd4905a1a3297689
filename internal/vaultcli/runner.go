package vaultcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const waitDelay = 2 * time.Second

// CommandRunner executes the vault CLI with the given arguments.
// env is overlaid onto the current process environment; it may be nil.
type CommandRunner interface {
	Run(ctx context.Context, args []string, env map[string]string) (string, error)
}

// CommandError is returned when the vault CLI exits non-zero or times out.
type CommandError struct {
	Args    []string // Arguments passed to the binary, session tokens redacted.
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs the vault CLI as a subprocess, one process per call.
type ExecRunner struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecRunner creates a runner for the given binary.
// A zero timeout leaves subprocess calls bounded only by ctx.
func NewExecRunner(binary string, timeout time.Duration, logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{binary: binary, timeout: timeout, logger: logger}
}

// Run executes the binary and returns its trimmed stdout.
func (r *ExecRunner) Run(ctx context.Context, args []string, env map[string]string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	// When the context expires only the direct child is killed. Any process it
	// forked still holds the stdout/stderr pipes, and Run would wait on them
	// forever; WaitDelay caps that wait so a timeout really returns.
	cmd.WaitDelay = waitDelay
	if len(env) > 0 {
		cmd.Env = overlayEnv(os.Environ(), env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	safeArgs := redactArgs(args)
	r.logger.Debug("vault command finished",
		zap.String("binary", r.binary),
		zap.Strings("args", safeArgs),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("ok", err == nil),
	)

	if err != nil {
		// Report timeouts explicitly; stderr is usually empty for a killed process.
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", &CommandError{
				Args:    safeArgs,
				Message: fmt.Sprintf("command timed out: %s", r.commandLine(safeArgs)),
				Err:     ctxErr,
			}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "command failed: " + r.commandLine(safeArgs)
		}
		return "", &CommandError{Args: safeArgs, Message: msg, Err: err}
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (r *ExecRunner) commandLine(args []string) string {
	return strings.Join(append([]string{r.binary}, args...), " ")
}

// overlayEnv returns base with every key in extra set, replacing existing entries.
func overlayEnv(base []string, extra map[string]string) []string {
	out := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, replaced := extra[key]; replaced {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}

// redactArgs hides the value following --session.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--session" {
			out[i+1] = "[REDACTED]"
		}
	}
	return out
}
