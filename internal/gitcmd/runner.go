package gitcmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes git commands in a given directory, capturing output.
type Runner struct {
	gitPath string
}

// RunResult holds the captured output of one git invocation.
type RunResult struct {
	Stdout string
	Stderr string
}

// NewRunner locates the git binary on PATH and returns a Runner.
func NewRunner() (*Runner, error) {
	path, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git binary not found in PATH: %w\nInstall git or ensure it's in your PATH environment variable", err)
	}

	return &Runner{gitPath: path}, nil
}

// Run executes a git command in dir. Omit the leading "git". On failure
// the returned error is an *ExecError carrying the classified type and
// the captured stdout/stderr.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) (RunResult, error) {
	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return RunResult{}, &ExecError{
			Type:   classify(stderr.String()),
			Args:   args,
			Dir:    dir,
			Err:    err,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	}

	return RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}
