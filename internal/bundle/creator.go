package bundle

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/gitcmd"
)

// Create materializes a Selection into a bundle file under destDir,
// named with the run stamp to disambiguate runs. The returned path
// points at the written artifact.
//
// An empty commit range surfaces as an error satisfying
// gitcmd.IsEmptyBundle; callers treat it as a soft skip.
func Create(ctx context.Context, git gitcmd.Git, dir, destDir string, stamp internal.Stamp, repo string, selection Selection) (string, error) {
	path := filepath.Join(destDir, stamp.BundleName(repo))

	if err := git.CreateBundle(ctx, dir, path, selection.Revs()); err != nil {
		if gitcmd.IsEmptyBundle(err) {
			return "", err
		}
		return "", fmt.Errorf("failed to create bundle for %q: %w\nCheck disk space and repository integrity", repo, err)
	}

	return path, nil
}

// Latest returns the newest bundle artifact for a repository in dir,
// determined by the timestamp parsed from the filename rather than
// filesystem modification time, so transfer reordering and clock skew
// cannot change the answer.
func Latest(dir, repo string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, repo+"_*.bundle"))
	if err != nil {
		return "", fmt.Errorf("failed to glob bundles for %q: %w", repo, err)
	}

	var best string
	for _, match := range matches {
		timestamp, ok := internal.ParseStampSuffix(filepath.Base(match), ".bundle")
		if !ok {
			continue
		}

		if best == "" {
			best = match
			continue
		}

		bestTimestamp, _ := internal.ParseStampSuffix(filepath.Base(best), ".bundle")
		if timestamp.After(bestTimestamp) || (timestamp.Equal(bestTimestamp) && match > best) {
			best = match
		}
	}

	if best == "" {
		return "", fmt.Errorf("no bundle found for repository %q in %s", repo, dir)
	}

	return best, nil
}
