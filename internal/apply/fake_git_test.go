package apply_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/ryanmoran/gitferry/internal/gitcmd"
)

// fakeGit simulates the destination repository for reconciler tests: a
// live ref table updated by fetches and deletions, plus configurable
// failures for verification and per-refspec pushes.
type fakeGit struct {
	verifyErr error
	fetchErr  error
	deleteErr error

	heads    []gitcmd.BundleHead
	pushErrs map[string]error

	fetchedRefspecs []string
	refs            map[string]bool
	remotes         map[string]string
	pushed          []string
	lfsPushes       []string
}

func newFakeGit(heads []gitcmd.BundleHead) *fakeGit {
	return &fakeGit{
		heads:    heads,
		pushErrs: make(map[string]error),
		refs:     make(map[string]bool),
		remotes:  make(map[string]string),
	}
}

func (f *fakeGit) VerifyBundle(ctx context.Context, dir, path string) error {
	return f.verifyErr
}

func (f *fakeGit) ListBundleHeads(ctx context.Context, dir, path string) ([]gitcmd.BundleHead, error) {
	return f.heads, nil
}

func (f *fakeGit) FetchBundle(ctx context.Context, dir, path string, refspecs []string) error {
	// Refs land before the error check: a real fetch that dies partway
	// can leave some of its refspecs already written.
	f.fetchedRefspecs = append(f.fetchedRefspecs, refspecs...)
	for _, refspec := range refspecs {
		if _, dst, ok := strings.Cut(refspec, ":"); ok {
			f.refs[dst] = true
		}
	}
	return f.fetchErr
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
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.refs, ref)
	return nil
}

func (f *fakeGit) SetRemote(ctx context.Context, dir, name, url string) error {
	f.remotes[name] = url
	return nil
}

func (f *fakeGit) Push(ctx context.Context, dir, remote, refspec string) error {
	if err, ok := f.pushErrs[refspec]; ok {
		return err
	}
	f.pushed = append(f.pushed, refspec)
	return nil
}

func (f *fakeGit) LFSPush(ctx context.Context, dir, remote string, all bool) error {
	f.lfsPushes = append(f.lfsPushes, remote)
	return nil
}

// Unused capability methods.

func (f *fakeGit) ResolveRef(ctx context.Context, dir, ref string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeGit) CommitTimestamp(ctx context.Context, dir, rev string) (time.Time, error) {
	return time.Time{}, errors.New("not implemented")
}

func (f *fakeGit) LatestCommitBefore(ctx context.Context, dir, tip string, cutoff time.Time) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeGit) ListTags(ctx context.Context, dir string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGit) IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error) {
	return false, errors.New("not implemented")
}

func (f *fakeGit) FetchRemote(ctx context.Context, dir, remote string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) CreateBundle(ctx context.Context, dir, path string, revs []string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) Clone(ctx context.Context, src, dir string) error {
	return errors.New("not implemented")
}

func (f *fakeGit) LFSFetch(ctx context.Context, dir string, all bool) error {
	return errors.New("not implemented")
}
