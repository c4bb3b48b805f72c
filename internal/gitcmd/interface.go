package gitcmd

import (
	"context"
	"time"
)

// BundleHead is one ref recorded in a bundle file, as reported by
// `git bundle list-heads`.
type BundleHead struct {
	Commit string
	Ref    string
}

// Git is the capability interface the selector and reconciler depend on.
// Every method takes the repository directory explicitly; implementations
// hold no per-repository state.
//
// The production implementation is CLI. Test code injects a fake:
//
//	type fakeGit struct{ gitcmd.Git }
//	func (f fakeGit) ResolveRef(...) (string, error) { /* canned answer */ }
type Git interface {
	// ResolveRef resolves a ref name to a commit hash. Returns an error
	// classified as UnknownRef when the ref does not exist.
	ResolveRef(ctx context.Context, dir, ref string) (string, error)

	// CommitTimestamp returns the committer timestamp of a revision.
	CommitTimestamp(ctx context.Context, dir, rev string) (time.Time, error)

	// LatestCommitBefore returns the most recent commit reachable from tip
	// whose timestamp is at or before the cutoff. Returns an empty string
	// (and no error) when the entire history is younger than the cutoff.
	LatestCommitBefore(ctx context.Context, dir, tip string, cutoff time.Time) (string, error)

	// ListTags lists all tag names in the repository.
	ListTags(ctx context.Context, dir string) ([]string, error)

	// IsAncestor reports whether ancestor is reachable from descendant.
	IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error)

	// FetchRemote refreshes remote-tracking refs and tags from a remote.
	FetchRemote(ctx context.Context, dir, remote string) error

	// CreateBundle writes a bundle file containing the given revisions.
	// Revisions are rev-list arguments: tag refs, bare tips, or
	// "<base>..<tip>" ranges. An empty commit range produces an error
	// classified as EmptyBundle.
	CreateBundle(ctx context.Context, dir, path string, revs []string) error

	// VerifyBundle checks bundle integrity and that all prerequisite
	// commits exist in the repository's object store. A missing-ancestor
	// failure is classified as MissingPrerequisites.
	VerifyBundle(ctx context.Context, dir, path string) error

	// ListBundleHeads lists the refs recorded in a bundle file.
	ListBundleHeads(ctx context.Context, dir, path string) ([]BundleHead, error)

	// FetchBundle fetches refs from a bundle file using explicit refspecs.
	FetchBundle(ctx context.Context, dir, path string, refspecs []string) error

	// ListRefs lists full ref names under the given prefix.
	ListRefs(ctx context.Context, dir, prefix string) ([]string, error)

	// DeleteRef removes a single ref.
	DeleteRef(ctx context.Context, dir, ref string) error

	// SetRemote idempotently creates or updates a named remote URL.
	SetRemote(ctx context.Context, dir, name, url string) error

	// Push pushes a single refspec to a remote. Rejections are classified
	// as TagExists or PushRejected so callers can isolate per-ref failures.
	Push(ctx context.Context, dir, remote, refspec string) error

	// Clone clones a source (a bundle file path works) into dir.
	Clone(ctx context.Context, src, dir string) error

	// LFSFetch downloads large objects into the local LFS cache. When all
	// is true, objects for all reachable history are fetched rather than
	// just the current checkout.
	LFSFetch(ctx context.Context, dir string, all bool) error

	// LFSPush uploads large objects to the LFS endpoint of a remote.
	LFSPush(ctx context.Context, dir, remote string, all bool) error
}
