package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/gitcmd"
)

// Tip is one resolved branch tip selected for bundling.
type Tip struct {
	// Ref is the rev the tip resolved from, e.g. "origin/main" or "main".
	Ref string

	// Branch is the short branch name from configuration.
	Branch string

	// Commit is the resolved commit hash.
	Commit string
}

// Boundary is one boundary expression for bundle creation. An empty Base
// means "include full history up to the tip"; otherwise the range is
// commits after Base (exclusive) up to the tip (inclusive).
type Boundary struct {
	Base string
	Tip  Tip
}

// Selection is the computed input to one bundle-create operation. Every
// tag is ancestor-reachable from at least one selected tip, so bundle
// creation never fails on missing prerequisite objects for a tag.
type Selection struct {
	Boundaries []Boundary
	Tags       []string
}

// Empty reports whether no branch resolved to a commit. Callers skip
// bundle creation for the repository without error.
func (s Selection) Empty() bool {
	return len(s.Boundaries) == 0
}

// Revs returns the rev-list arguments for bundle creation: tag refs
// first, then the boundary expressions.
func (s Selection) Revs() []string {
	var revs []string
	for _, tag := range s.Tags {
		revs = append(revs, "refs/tags/"+tag)
	}
	for _, b := range s.Boundaries {
		if b.Base == "" {
			revs = append(revs, b.Tip.Ref)
		} else {
			revs = append(revs, b.Base+".."+b.Tip.Ref)
		}
	}
	return revs
}

// Selector computes Selections against the git capability interface.
type Selector struct {
	git    gitcmd.Git
	writer internal.Writer
}

// NewSelector creates a Selector.
func NewSelector(git gitcmd.Git, writer internal.Writer) Selector {
	return Selector{
		git:    git,
		writer: writer,
	}
}

// Select resolves the configured branches and tags of the repository at
// dir into a Selection bounded by the cutoff time.
//
// For each branch the remote-tracking ref is preferred over a same-named
// local ref; a branch absent in both forms is a warning, never fatal.
// For each resolved tip the most recent commit at or before the cutoff
// becomes the boundary base; when the entire history is younger, the tip
// alone is recorded and full history is bundled; when the tip itself
// predates the cutoff, the branch is dropped from the selection. A tag
// is included only
// when its commit timestamp is at or after the cutoff and the commit is
// reachable from at least one selected tip.
func (s Selector) Select(ctx context.Context, dir string, branches []string, cutoff time.Time) (Selection, error) {
	var selection Selection

	for _, branch := range branches {
		tip, err := s.resolveTip(ctx, dir, branch)
		if err != nil {
			return Selection{}, err
		}
		if tip == nil {
			s.writer.Warningf("branch %q not found in %s (neither origin/%s nor %s), skipping", branch, dir, branch, branch)
			continue
		}

		base, err := s.git.LatestCommitBefore(ctx, dir, tip.Commit, cutoff)
		if err != nil {
			return Selection{}, fmt.Errorf("failed to compute boundary for %s: %w", tip.Ref, err)
		}

		// The tip itself predates the cutoff: nothing new on this branch,
		// so it contributes nothing to the bundle.
		if base == tip.Commit {
			s.writer.Printf("branch %q has no commits inside the lookback window, skipping\n", branch)
			continue
		}

		selection.Boundaries = append(selection.Boundaries, Boundary{
			Base: base,
			Tip:  *tip,
		})
	}

	if selection.Empty() {
		return selection, nil
	}

	tags, err := s.selectTags(ctx, dir, selection.Boundaries, cutoff)
	if err != nil {
		return Selection{}, err
	}
	selection.Tags = tags

	return selection, nil
}

func (s Selector) resolveTip(ctx context.Context, dir, branch string) (*Tip, error) {
	for _, ref := range []string{"origin/" + branch, branch} {
		commit, err := s.git.ResolveRef(ctx, dir, ref)
		if err != nil {
			if gitcmd.IsUnknownRef(err) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve ref %q in %s: %w", ref, dir, err)
		}

		return &Tip{
			Ref:    ref,
			Branch: branch,
			Commit: commit,
		}, nil
	}

	return nil, nil
}

func (s Selector) selectTags(ctx context.Context, dir string, boundaries []Boundary, cutoff time.Time) ([]string, error) {
	tags, err := s.git.ListTags(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags in %s: %w", dir, err)
	}

	var selected []string
	for _, tag := range tags {
		commit, err := s.git.ResolveRef(ctx, dir, "refs/tags/"+tag)
		if err != nil {
			if gitcmd.IsUnknownRef(err) {
				s.writer.Warningf("tag %q does not resolve to a commit, skipping", tag)
				continue
			}
			return nil, fmt.Errorf("failed to resolve tag %q: %w", tag, err)
		}

		timestamp, err := s.git.CommitTimestamp(ctx, dir, commit)
		if err != nil {
			return nil, fmt.Errorf("failed to read timestamp of tag %q: %w", tag, err)
		}
		if timestamp.Before(cutoff) {
			continue
		}

		reachable, err := s.reachableFromAnyTip(ctx, dir, commit, boundaries)
		if err != nil {
			return nil, err
		}
		if reachable {
			selected = append(selected, tag)
		}
	}

	return selected, nil
}

// reachableFromAnyTip short-circuits on the first tip that reaches the
// commit. Reachability is checked against selected tips only, not every
// branch in the repository, to keep irrelevant tags out of the bundle.
func (s Selector) reachableFromAnyTip(ctx context.Context, dir, commit string, boundaries []Boundary) (bool, error) {
	for _, b := range boundaries {
		ok, err := s.git.IsAncestor(ctx, dir, commit, b.Tip.Commit)
		if err != nil {
			return false, fmt.Errorf("failed to check ancestry of %s against %s: %w", commit, b.Tip.Ref, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
