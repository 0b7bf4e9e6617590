// Package run wraps external process execution and filesystem probes behind
// small interfaces so the rest of the pipeline can be exercised against fakes.
package run

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// Result holds captured output from a quiet invocation. Loud invocations
// inherit the parent's stdio and leave both fields empty.
type Result struct {
	Stdout string
	Stderr string
}

// Opts controls a single invocation.
type Opts struct {
	Quiet       bool     // capture output instead of inheriting stdio
	Env         []string // extra KEY=VALUE entries appended to the environment
	PathPrepend []string // directories prepended to PATH for this call
}

// Runner executes an external command. The command may be a full shell-style
// string (e.g. "py -3.11"); it is split with shellwords before exec.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts Opts) (*Result, error)
}

// Prober reports whether a filesystem path exists.
type Prober interface {
	Exists(path string) bool
}

// ExecRunner is the os/exec-backed Runner used outside tests.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, command string, args []string, opts Opts) (*Result, error) {
	parts, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	argv := append(append([]string{}, parts[1:]...), args...)
	cmd := exec.CommandContext(ctx, parts[0], argv...)

	env := os.Environ()
	if len(opts.PathPrepend) > 0 {
		sep := string(os.PathListSeparator)
		env = append(env, "PATH="+strings.Join(opts.PathPrepend, sep)+sep+os.Getenv("PATH"))
	}
	cmd.Env = append(env, opts.Env...)

	if !opts.Quiet {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("%s failed: %w", parts[0], err)
		}
		return &Result{}, nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail != "" {
			return res, fmt.Errorf("%s failed: %s: %w", parts[0], detail, runErr)
		}
		return res, fmt.Errorf("%s failed: %w", parts[0], runErr)
	}
	return res, nil
}

// OSProber is the os.Stat-backed Prober used outside tests.
type OSProber struct{}

func (OSProber) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
