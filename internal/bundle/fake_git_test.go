package bundle_test

import (
	"context"
	"errors"
	"time"

	"github.com/ryanmoran/gitferry/internal/gitcmd"
)

// fakeCommit is one node in the simulated history graph.
type fakeCommit struct {
	timestamp time.Time
	parents   []string
}

// fakeGit simulates just enough of a repository for the selector and
// creator: a commit graph with timestamps, a ref table, and a record of
// bundle-create invocations.
type fakeGit struct {
	refs    map[string]string
	commits map[string]fakeCommit
	tags    []string

	createdBundles []createCall
	createErr      error
}

type createCall struct {
	path string
	revs []string
}

func (f *fakeGit) ResolveRef(ctx context.Context, dir, ref string) (string, error) {
	commit, ok := f.refs[ref]
	if !ok {
		return "", &gitcmd.ExecError{
			Type:   gitcmd.UnknownRef,
			Args:   []string{"rev-parse", "--verify", ref},
			Err:    errors.New("exit status 128"),
			Stderr: "fatal: Needed a single revision",
		}
	}
	return commit, nil
}

func (f *fakeGit) CommitTimestamp(ctx context.Context, dir, rev string) (time.Time, error) {
	commit, ok := f.commits[rev]
	if !ok {
		return time.Time{}, errors.New("unknown commit " + rev)
	}
	return commit.timestamp, nil
}

func (f *fakeGit) LatestCommitBefore(ctx context.Context, dir, tip string, cutoff time.Time) (string, error) {
	var best string
	var bestTime time.Time
	for _, commit := range f.ancestry(tip) {
		t := f.commits[commit].timestamp
		if t.After(cutoff) {
			continue
		}
		if best == "" || t.After(bestTime) {
			best = commit
			bestTime = t
		}
	}
	return best, nil
}

func (f *fakeGit) ListTags(ctx context.Context, dir string) ([]string, error) {
	return f.tags, nil
}

func (f *fakeGit) IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error) {
	for _, commit := range f.ancestry(descendant) {
		if commit == ancestor {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGit) CreateBundle(ctx context.Context, dir, path string, revs []string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdBundles = append(f.createdBundles, createCall{path: path, revs: revs})
	return nil
}

func (f *fakeGit) ancestry(tip string) []string {
	var visited []string
	seen := make(map[string]bool)
	queue := []string{tip}
	for len(queue) > 0 {
		commit := queue[0]
		queue = queue[1:]
		if seen[commit] {
			continue
		}
		seen[commit] = true
		if _, ok := f.commits[commit]; !ok {
			continue
		}
		visited = append(visited, commit)
		queue = append(queue, f.commits[commit].parents...)
	}
	return visited
}

// Unused capability methods.

func (f *fakeGit) FetchRemote(ctx context.Context, dir, remote string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) VerifyBundle(ctx context.Context, dir, path string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) ListBundleHeads(ctx context.Context, dir, path string) ([]gitcmd.BundleHead, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGit) FetchBundle(ctx context.Context, dir, path string, refspecs []string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) ListRefs(ctx context.Context, dir, prefix string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGit) DeleteRef(ctx context.Context, dir, ref string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) SetRemote(ctx context.Context, dir, name, url string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) Push(ctx context.Context, dir, remote, refspec string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) Clone(ctx context.Context, src, dir string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) LFSFetch(ctx context.Context, dir string, all bool) error {
	return errors.New("not implemented")
}

func (f *fakeGit) LFSPush(ctx context.Context, dir, remote string, all bool) error {
	return errors.New("not implemented")
}
