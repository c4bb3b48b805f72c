package gitcmd

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CLI implements Git by shelling out to the git binary.
type CLI struct {
	runner *Runner
}

// NewCLI returns a Git implementation backed by the git binary on PATH.
func NewCLI() (*CLI, error) {
	runner, err := NewRunner()
	if err != nil {
		return nil, err
	}

	return &CLI{runner: runner}, nil
}

func (c *CLI) ResolveRef(ctx context.Context, dir, ref string) (string, error) {
	result, err := c.runner.Run(ctx, dir, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result.Stdout), nil
}

func (c *CLI) CommitTimestamp(ctx context.Context, dir, rev string) (time.Time, error) {
	result, err := c.runner.Run(ctx, dir, "show", "--no-patch", "--format=%ct", rev)
	if err != nil {
		return time.Time{}, err
	}

	seconds, err := strconv.ParseInt(strings.TrimSpace(result.Stdout), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse commit timestamp for %q: %w", rev, err)
	}

	return time.Unix(seconds, 0).UTC(), nil
}

func (c *CLI) LatestCommitBefore(ctx context.Context, dir, tip string, cutoff time.Time) (string, error) {
	result, err := c.runner.Run(ctx, dir, "rev-list", "--max-count=1", "--before="+cutoff.Format(time.RFC3339), tip)
	if err != nil {
		return "", err
	}

	// rev-list prints nothing when no commit is old enough.
	return strings.TrimSpace(result.Stdout), nil
}

func (c *CLI) ListTags(ctx context.Context, dir string) ([]string, error) {
	result, err := c.runner.Run(ctx, dir, "tag", "--list")
	if err != nil {
		return nil, err
	}

	return splitLines(result.Stdout), nil
}

func (c *CLI) IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error) {
	_, err := c.runner.Run(ctx, dir, "merge-base", "--is-ancestor", ancestor, descendant)
	if err != nil {
		// Exit code 1 means "not an ancestor", not a failure.
		var execErr *ExecError
		if errors.As(err, &execErr) {
			var exitErr *exec.ExitError
			if errors.As(execErr.Err, &exitErr) && exitErr.ExitCode() == 1 {
				return false, nil
			}
		}
		return false, err
	}

	return true, nil
}

func (c *CLI) FetchRemote(ctx context.Context, dir, remote string) error {
	_, err := c.runner.Run(ctx, dir, "fetch", "--prune", "--tags", remote)
	return err
}

func (c *CLI) CreateBundle(ctx context.Context, dir, path string, revs []string) error {
	args := append([]string{"bundle", "create", path}, revs...)
	_, err := c.runner.Run(ctx, dir, args...)
	return err
}

func (c *CLI) VerifyBundle(ctx context.Context, dir, path string) error {
	_, err := c.runner.Run(ctx, dir, "bundle", "verify", path)
	return err
}

func (c *CLI) ListBundleHeads(ctx context.Context, dir, path string) ([]BundleHead, error) {
	result, err := c.runner.Run(ctx, dir, "bundle", "list-heads", path)
	if err != nil {
		return nil, err
	}

	var heads []BundleHead
	for _, line := range splitLines(result.Stdout) {
		commit, ref, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("malformed bundle head line %q in %q", line, path)
		}
		heads = append(heads, BundleHead{Commit: commit, Ref: ref})
	}

	return heads, nil
}

func (c *CLI) FetchBundle(ctx context.Context, dir, path string, refspecs []string) error {
	args := append([]string{"fetch", path}, refspecs...)
	_, err := c.runner.Run(ctx, dir, args...)
	return err
}

func (c *CLI) ListRefs(ctx context.Context, dir, prefix string) ([]string, error) {
	result, err := c.runner.Run(ctx, dir, "for-each-ref", "--format=%(refname)", prefix)
	if err != nil {
		return nil, err
	}

	return splitLines(result.Stdout), nil
}

func (c *CLI) DeleteRef(ctx context.Context, dir, ref string) error {
	_, err := c.runner.Run(ctx, dir, "update-ref", "-d", ref)
	return err
}

func (c *CLI) SetRemote(ctx context.Context, dir, name, url string) error {
	_, err := c.runner.Run(ctx, dir, "remote", "add", name, url)
	if err != nil {
		if !HasType(err, RemoteExists) {
			return err
		}
		_, err = c.runner.Run(ctx, dir, "remote", "set-url", name, url)
	}
	return err
}

func (c *CLI) Push(ctx context.Context, dir, remote, refspec string) error {
	_, err := c.runner.Run(ctx, dir, "push", remote, refspec)
	return err
}

func (c *CLI) Clone(ctx context.Context, src, dir string) error {
	_, err := c.runner.Run(ctx, "", "clone", src, dir)
	return err
}

func (c *CLI) LFSFetch(ctx context.Context, dir string, all bool) error {
	args := []string{"lfs", "fetch"}
	if all {
		args = append(args, "--all")
	}
	_, err := c.runner.Run(ctx, dir, args...)
	return err
}

func (c *CLI) LFSPush(ctx context.Context, dir, remote string, all bool) error {
	args := []string{"lfs", "push"}
	if all {
		args = append(args, "--all")
	}
	args = append(args, remote)
	_, err := c.runner.Run(ctx, dir, args...)
	return err
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
