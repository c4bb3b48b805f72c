package migrate_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ryanmoran/gitferry/internal/gitcmd"
)

// fakeGit simulates both sides of a migration for collector and applier
// tests. Source repositories are keyed by directory basename; every
// branch tip sits inside the lookback window with full history young,
// so selection records a bare tip. Bundle files are actually written so
// archives round-trip through the real packer.
type fakeGit struct {
	fetchErrs  map[string]error
	createErrs map[string]error
	verifyErr  error

	heads   []gitcmd.BundleHead
	refs    map[string]bool
	remotes map[string]string
	pushed  []string
	cloned  []string
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		fetchErrs:  make(map[string]error),
		createErrs: make(map[string]error),
		refs:       make(map[string]bool),
		remotes:    make(map[string]string),
	}
}

func (f *fakeGit) FetchRemote(ctx context.Context, dir, remote string) error {
	return f.fetchErrs[filepath.Base(dir)]
}

func (f *fakeGit) ResolveRef(ctx context.Context, dir, ref string) (string, error) {
	if ref == "origin/main" {
		return "tip-" + filepath.Base(dir), nil
	}
	return "", &gitcmd.ExecError{
		Type:   gitcmd.UnknownRef,
		Args:   []string{"rev-parse", "--verify", ref},
		Err:    errors.New("exit status 128"),
		Stderr: "fatal: Needed a single revision",
	}
}

func (f *fakeGit) CommitTimestamp(ctx context.Context, dir, rev string) (time.Time, error) {
	return time.Now(), nil
}

func (f *fakeGit) LatestCommitBefore(ctx context.Context, dir, tip string, cutoff time.Time) (string, error) {
	return "", nil
}

func (f *fakeGit) ListTags(ctx context.Context, dir string) ([]string, error) {
	return nil, nil
}

func (f *fakeGit) IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error) {
	return true, nil
}

func (f *fakeGit) CreateBundle(ctx context.Context, dir, path string, revs []string) error {
	if err := f.createErrs[filepath.Base(dir)]; err != nil {
		return err
	}
	return os.WriteFile(path, []byte("bundle-bytes"), 0644)
}

func (f *fakeGit) VerifyBundle(ctx context.Context, dir, path string) error {
	return f.verifyErr
}

func (f *fakeGit) ListBundleHeads(ctx context.Context, dir, path string) ([]gitcmd.BundleHead, error) {
	return f.heads, nil
}

func (f *fakeGit) FetchBundle(ctx context.Context, dir, path string, refspecs []string) error {
	for _, refspec := range refspecs {
		if _, dst, ok := strings.Cut(refspec, ":"); ok {
			f.refs[dst] = true
		}
	}
	return nil
}

func (f *fakeGit) ListRefs(ctx context.Context, dir, prefix string) ([]string, error) {
	var matches []string
	for ref := range f.refs {
		if strings.HasPrefix(ref, prefix) {
			matches = append(matches, ref)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func (f *fakeGit) DeleteRef(ctx context.Context, dir, ref string) error {
	delete(f.refs, ref)
	return nil
}

func (f *fakeGit) SetRemote(ctx context.Context, dir, name, url string) error {
	f.remotes[name] = url
	return nil
}

func (f *fakeGit) Push(ctx context.Context, dir, remote, refspec string) error {
	f.pushed = append(f.pushed, refspec)
	return nil
}

func (f *fakeGit) Clone(ctx context.Context, src, dir string) error {
	f.cloned = append(f.cloned, dir)
	return os.MkdirAll(filepath.Join(dir, ".git"), 0755)
}

func (f *fakeGit) LFSFetch(ctx context.Context, dir string, all bool) error {
	return nil
}

func (f *fakeGit) LFSPush(ctx context.Context, dir, remote string, all bool) error {
	return nil
}
