package apply

import (
	"context"
	"fmt"
	"strings"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/gitcmd"
	"github.com/ryanmoran/gitferry/internal/lfs"
)

// IsolationNamespace is the ref prefix that receives fetched branches.
// Nothing under refs/heads/* is ever written directly, so a checked-out
// branch in the destination cannot collide with the import.
const IsolationNamespace = "refs/remotes/bundle-import"

// State names the stages of the reconciliation protocol, in order.
type State string

const (
	StateLocated              State = "Located"
	StateVerified             State = "Verified"
	StateFetched              State = "Fetched"
	StateLargeObjectsImported State = "LargeObjectsImported"
	StateRemoteConfigured     State = "RemoteConfigured"
	StatePushed               State = "Pushed"
	StateCleanedUp            State = "CleanedUp"
)

// Options configures one reconciliation.
type Options struct {
	// RemoteName is the git remote created or updated on the destination.
	RemoteName string

	// RemoteURL is the push URL, credentials included per the auth mode.
	RemoteURL string

	// LFS enables the large-object import and push steps.
	LFS bool

	// PayloadDir is the unpacked large-object payload directory, empty
	// when the bundle carried none.
	PayloadDir string
}

// Result reports how far the protocol progressed and what was pushed.
type Result struct {
	State    State
	Branches []string
	Tags     []string
	Warnings []string
	Rejected []string
}

// PartialPushError reports refs whose push was rejected while others
// succeeded. The successful refs remain pushed.
type PartialPushError struct {
	Refs []string
}

func (e *PartialPushError) Error() string {
	return fmt.Sprintf("push rejected for %s: successfully pushed refs remain on the remote; check branch protection rules", strings.Join(e.Refs, ", "))
}

// Reconciler drives the verify/fetch/import/push/cleanup protocol.
type Reconciler struct {
	git     gitcmd.Git
	carrier lfs.Carrier
	writer  internal.Writer
}

// NewReconciler creates a Reconciler.
func NewReconciler(git gitcmd.Git, carrier lfs.Carrier, writer internal.Writer) Reconciler {
	return Reconciler{
		git:     git,
		carrier: carrier,
		writer:  writer,
	}
}

// Apply runs the full protocol for one bundle against the repository at
// repoDir. The returned Result is valid even when an error is returned;
// its State shows where the protocol stopped.
func (r Reconciler) Apply(ctx context.Context, repoDir, bundlePath string, opts Options) (result Result, err error) {
	result.State = StateLocated

	if err := r.git.VerifyBundle(ctx, repoDir, bundlePath); err != nil {
		if gitcmd.IsMissingPrerequisites(err) {
			return result, fmt.Errorf("bundle %q assumes history the destination does not have: %w\nRe-run the collector with a longer lookback, or produce a full-history bundle", bundlePath, err)
		}
		return result, fmt.Errorf("bundle %q failed verification: %w", bundlePath, err)
	}
	result.State = StateVerified

	heads, err := r.git.ListBundleHeads(ctx, repoDir, bundlePath)
	if err != nil {
		return result, fmt.Errorf("failed to list heads of bundle %q: %w", bundlePath, err)
	}

	imports, tags := partitionHeads(heads)

	// The fetch is the first write into the isolation namespace, and a
	// failed fetch can still land some of its refspecs. Sweep the
	// namespace on every exit path from here on.
	defer func() {
		r.cleanup(ctx, repoDir, &result)
	}()

	if err := r.git.FetchBundle(ctx, repoDir, bundlePath, fetchRefspecs(imports, tags)); err != nil {
		return result, fmt.Errorf("failed to fetch refs from bundle %q: %w", bundlePath, err)
	}
	result.State = StateFetched

	if opts.LFS && opts.PayloadDir != "" {
		if err := r.carrier.Import(ctx, repoDir, opts.PayloadDir); err != nil {
			return result, err
		}
		result.State = StateLargeObjectsImported
	}

	if err := r.git.SetRemote(ctx, repoDir, opts.RemoteName, opts.RemoteURL); err != nil {
		return result, fmt.Errorf("failed to configure remote %q: %w\nCheck REMOTE_HOST and credentials", opts.RemoteName, err)
	}
	result.State = StateRemoteConfigured

	if opts.LFS && opts.PayloadDir != "" {
		if err := r.carrier.Push(ctx, repoDir, opts.RemoteName); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			result.Rejected = append(result.Rejected, "lfs objects")
		}
	}

	r.pushTags(ctx, repoDir, tags, opts, &result)
	r.pushBranches(ctx, repoDir, imports, opts, &result)
	result.State = StatePushed

	for _, warning := range result.Warnings {
		r.writer.Warning(warning)
	}

	if len(result.Rejected) > 0 {
		return result, &PartialPushError{Refs: result.Rejected}
	}

	return result, nil
}

// pushTags pushes each tag individually, best-effort. Tags are immutable
// by convention, so a rejection for a pre-existing tag is benign.
func (r Reconciler) pushTags(ctx context.Context, repoDir string, tags []string, opts Options, result *Result) {
	for _, tag := range tags {
		ref := "refs/tags/" + tag
		err := r.git.Push(ctx, repoDir, opts.RemoteName, ref+":"+ref)
		if err != nil {
			if gitcmd.IsTagExists(err) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("tag %q already exists on the remote, leaving it as-is", tag))
				continue
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to push tag %q: %v", tag, err))
			result.Rejected = append(result.Rejected, ref)
			continue
		}
		result.Tags = append(result.Tags, tag)
	}
}

// pushBranches maps each isolated ref onto the remote's standard branch
// namespace, one push per ref so a rejection for one branch never
// prevents the others from landing.
func (r Reconciler) pushBranches(ctx context.Context, repoDir string, imports []importRef, opts Options, result *Result) {
	for _, imp := range imports {
		refspec := IsolationNamespace + "/" + imp.Branch + ":refs/heads/" + imp.Branch
		err := r.git.Push(ctx, repoDir, opts.RemoteName, refspec)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to push branch %q: %v", imp.Branch, err))
			result.Rejected = append(result.Rejected, "refs/heads/"+imp.Branch)
			continue
		}
		result.Branches = append(result.Branches, imp.Branch)
	}
}

func (r Reconciler) cleanup(ctx context.Context, repoDir string, result *Result) {
	refs, err := r.git.ListRefs(ctx, repoDir, IsolationNamespace+"/")
	if err != nil {
		r.writer.Warningf("failed to list isolation refs in %s: %v", repoDir, err)
		return
	}

	clean := true
	for _, ref := range refs {
		if err := r.git.DeleteRef(ctx, repoDir, ref); err != nil {
			r.writer.Warningf("failed to delete isolation ref %q: %v", ref, err)
			clean = false
		}
	}

	if clean && result.State == StatePushed {
		result.State = StateCleanedUp
	}
}

// importRef pairs a bundle head's recorded ref with the short branch
// name it maps to on the destination.
type importRef struct {
	Src    string
	Branch string
}

// partitionHeads splits bundle heads into branch imports and tag names.
// Branch heads may be recorded under refs/heads/* or under a
// remote-tracking prefix, depending on how the collector resolved the
// tip.
func partitionHeads(heads []gitcmd.BundleHead) (imports []importRef, tags []string) {
	for _, head := range heads {
		switch {
		case strings.HasPrefix(head.Ref, "refs/tags/"):
			tags = append(tags, strings.TrimPrefix(head.Ref, "refs/tags/"))
		case strings.HasPrefix(head.Ref, "refs/heads/"):
			imports = append(imports, importRef{
				Src:    head.Ref,
				Branch: strings.TrimPrefix(head.Ref, "refs/heads/"),
			})
		case strings.HasPrefix(head.Ref, "refs/remotes/"):
			rest := strings.TrimPrefix(head.Ref, "refs/remotes/")
			if _, branch, ok := strings.Cut(rest, "/"); ok {
				imports = append(imports, importRef{
					Src:    head.Ref,
					Branch: branch,
				})
			}
		}
	}
	return imports, tags
}

// fetchRefspecs maps every bundle head to its import destination:
// branches into the isolation namespace, tags directly into the tag
// namespace (tags are assumed non-conflicting and immutable).
func fetchRefspecs(imports []importRef, tags []string) []string {
	var refspecs []string
	for _, imp := range imports {
		refspecs = append(refspecs, imp.Src+":"+IsolationNamespace+"/"+imp.Branch)
	}
	for _, tag := range tags {
		refspecs = append(refspecs, "refs/tags/"+tag+":refs/tags/"+tag)
	}
	return refspecs
}
