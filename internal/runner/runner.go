// Package runner executes external programs on behalf of the capability
// implementations (mkcert, nginx, systemctl, package managers).
//
// Side-effecting invocations go through Run, which honors dry-run mode by
// logging the intended command and returning a synthetic success.
// Read-only invocations go through Query and always execute.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"nusacloud/localstacker/internal/domain"
)

// Command describes a single external program invocation.
type Command struct {
	Name string
	Args []string

	// Env holds variables added to the inherited environment.
	Env map[string]string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Description is a short label used in error messages
	// (e.g. "install local CA").
	Description string
}

// Line returns the program and its arguments joined by spaces.
func (c Command) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// String renders the command with its environment overrides prefixed,
// e.g. "CAROOT=/home/u/.local/share/mkcert mkcert -install".
func (c Command) String() string {
	env := c.envList()
	if len(env) == 0 {
		return c.Line()
	}
	return strings.Join(env, " ") + " " + c.Line()
}

func (c Command) envList() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+c.Env[k])
	}
	return list
}

func (c Command) label() string {
	if c.Description != "" {
		return c.Description
	}
	return c.Name
}

// Result captures the outcome of an executed command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner runs external commands.
type Runner interface {
	// Run executes a command that changes system state. In dry-run mode the
	// command is logged and not executed.
	Run(ctx context.Context, c Command) (*Result, error)

	// Query executes a read-only command. It runs even in dry-run mode.
	// The returned Result is non-nil whenever the process started, so
	// callers can inspect output of commands that signal state through
	// their exit code.
	Query(ctx context.Context, c Command) (*Result, error)

	// LookPath reports whether name resolves to an executable on PATH.
	LookPath(name string) bool
}

// Exec is the production Runner backed by os/exec.
type Exec struct {
	logger *slog.Logger
	dryRun bool
}

// New returns an Exec runner. When dryRun is true, Run never starts a
// process.
func New(logger *slog.Logger, dryRun bool) *Exec {
	return &Exec{logger: logger, dryRun: dryRun}
}

func (e *Exec) Run(ctx context.Context, c Command) (*Result, error) {
	if e.dryRun {
		e.logger.Info("Would execute", "command", c.String(), "dry_run", true)
		return &Result{}, nil
	}
	return e.exec(ctx, c)
}

func (e *Exec) Query(ctx context.Context, c Command) (*Result, error) {
	return e.exec(ctx, c)
}

func (e *Exec) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (e *Exec) exec(ctx context.Context, c Command) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.envList()...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("Executing command", "command", c.String(), "dir", c.Dir)

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) || cmd.ProcessState == nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrExternalTool, c.label(), err)
		}

		e.logger.Debug("Command failed",
			"command", c.Line(),
			"exitCode", result.ExitCode,
			"stderr", strings.TrimSpace(result.Stderr),
			"duration", result.Duration,
		)
		return result, fmt.Errorf("%w: %s exited with code %d: %s",
			domain.ErrExternalTool, c.label(), result.ExitCode, failureOutput(result))
	}

	e.logger.Debug("Command completed",
		"command", c.Line(),
		"exitCode", result.ExitCode,
		"duration", result.Duration,
	)

	return result, nil
}

// failureOutput picks the most useful text to show for a failed command.
func failureOutput(r *Result) string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(r.Stdout); msg != "" {
		return msg
	}
	return "no output"
}
