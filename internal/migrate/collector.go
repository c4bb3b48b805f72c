package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/archive"
	"github.com/ryanmoran/gitferry/internal/bundle"
	"github.com/ryanmoran/gitferry/internal/gitcmd"
	"github.com/ryanmoran/gitferry/internal/lfs"
	"github.com/ryanmoran/gitferry/internal/repolist"
)

// Collector runs the source-side phase: select refs, create bundles,
// carry large objects, and package everything into one archive.
type Collector struct {
	Git     gitcmd.Git
	Config  internal.Config
	Writer  internal.Writer
	Cleanup *internal.CleanupManager

	// Now allows tests to pin the run timestamp; defaults to time.Now.
	Now func() time.Time
}

// Run processes every repository in the list. A failure in one
// repository never stops the others; the summary carries the final
// counts and Err() reports whether the process should exit non-zero.
func (c Collector) Run(ctx context.Context) (Summary, error) {
	if err := c.Config.ValidateCollect(); err != nil {
		return Summary{}, err
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	stamp := internal.NewStamp(now())

	cutoff, err := internal.ParseLookback(c.Config.Lookback, now())
	if err != nil {
		return Summary{}, err
	}

	names, err := repolist.Load(c.Config.RepoList)
	if err != nil {
		return Summary{}, err
	}

	// Resolve every working copy up front so a bad list entry aborts the
	// run before anything is bundled.
	records, err := repolist.Resolve(names, c.Config.SourceDirs, c.Config.Branches)
	if err != nil {
		return Summary{}, err
	}

	staging, err := os.MkdirTemp("", "gitferry-staging-*")
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create staging directory: %w\nCheck disk space and /tmp permissions", err)
	}
	c.Cleanup.Add("staging-directory", func() error {
		return os.RemoveAll(staging)
	})

	selector := bundle.NewSelector(c.Git, c.Writer)
	carrier := lfs.NewCarrier(c.Git, c.Writer)

	var summary Summary
	for _, record := range records {
		if err := c.collectOne(ctx, record, staging, stamp, cutoff, selector, carrier, &summary); err != nil {
			c.Writer.Warningf("repository %q failed: %v", record.Name, err)
			summary.fail(record.Name)
		}
	}

	if summary.Succeeded > 0 {
		if err := os.MkdirAll(c.Config.ArchiveDir, 0755); err != nil {
			return summary, fmt.Errorf("failed to create archive directory %q: %w", c.Config.ArchiveDir, err)
		}

		archivePath := filepath.Join(c.Config.ArchiveDir, stamp.ArchiveName(c.Config.TextEncode))
		if err := archive.Pack(staging, archivePath); err != nil {
			return summary, err
		}
		c.Writer.Printf("wrote %s\n", archivePath)
	} else {
		c.Writer.Println("no bundles created, skipping archive packaging")
	}

	summary.Print(c.Writer)
	return summary, summary.Err()
}

func (c Collector) collectOne(ctx context.Context, record repolist.Record, staging string, stamp internal.Stamp, cutoff time.Time, selector bundle.Selector, carrier lfs.Carrier, summary *Summary) error {
	name, path := record.Name, record.Path

	// Refresh remote-tracking refs; a stale source still bundles, so a
	// fetch failure is a warning rather than a per-repo failure.
	if err := c.Git.FetchRemote(ctx, path, "origin"); err != nil {
		c.Writer.Warningf("failed to refresh %q from its upstream, using existing tracking refs: %v", name, err)
	}

	selection, err := selector.Select(ctx, path, record.Branches, cutoff)
	if err != nil {
		return err
	}
	if selection.Empty() {
		c.Writer.Printf("%s: no branches resolved, skipping\n", name)
		summary.Skipped++
		return nil
	}

	repoStaging := filepath.Join(staging, name)
	if err := os.MkdirAll(repoStaging, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory for %q: %w", name, err)
	}

	bundlePath, err := bundle.Create(ctx, c.Git, path, repoStaging, stamp, name, selection)
	if err != nil {
		// An empty commit range is expected when nothing changed inside
		// the lookback window.
		if gitcmd.IsEmptyBundle(err) {
			c.Writer.Printf("%s: no commits in range, skipping\n", name)
			summary.Skipped++
			return os.RemoveAll(repoStaging)
		}
		_ = os.RemoveAll(repoStaging)
		return err
	}

	if c.Config.LFS && carrier.Detect(path) {
		carried, err := carrier.Export(ctx, path, repoStaging, c.Config.LFSFullHistory)
		if err != nil {
			return err
		}
		if carried {
			c.Writer.Printf("%s: carried lfs objects\n", name)
		}
	}

	c.Writer.Printf("%s: wrote %s\n", name, filepath.Base(bundlePath))
	summary.Succeeded++
	return nil
}
