package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/apply"
	"github.com/ryanmoran/gitferry/internal/archive"
	"github.com/ryanmoran/gitferry/internal/bundle"
	"github.com/ryanmoran/gitferry/internal/gitcmd"
	"github.com/ryanmoran/gitferry/internal/lfs"
	"github.com/ryanmoran/gitferry/internal/repolist"
)

// Applier runs the destination-side phase: unpack the latest archive and
// replay every repository's bundle through the reconciliation protocol.
type Applier struct {
	Git     gitcmd.Git
	Config  internal.Config
	Writer  internal.Writer
	Cleanup *internal.CleanupManager

	// Init clones missing destination working copies from their bundles
	// instead of failing, for first-time setup.
	Init bool
}

// Run locates and unpacks the most recent archive, then processes each
// repository directory it contains. Failures are isolated per
// repository; the summary decides the process exit status.
func (a Applier) Run(ctx context.Context) (Summary, error) {
	if err := a.Config.ValidateApply(); err != nil {
		return Summary{}, err
	}

	archivePath, err := archive.Latest(a.Config.ArchiveDir)
	if err != nil {
		return Summary{}, err
	}
	a.Writer.Printf("applying %s\n", archivePath)

	extracted, err := os.MkdirTemp("", "gitferry-extract-*")
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create extraction directory: %w\nCheck disk space and /tmp permissions", err)
	}
	a.Cleanup.Add("extraction-directory", func() error {
		return os.RemoveAll(extracted)
	})

	if err := archive.Unpack(archivePath, extracted); err != nil {
		return Summary{}, err
	}

	entries, err := os.ReadDir(extracted)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list extracted archive: %w", err)
	}

	reconciler := apply.NewReconciler(a.Git, lfs.NewCarrier(a.Git, a.Writer), a.Writer)

	var summary Summary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		if err := a.applyOne(ctx, reconciler, name, filepath.Join(extracted, name)); err != nil {
			a.Writer.Warningf("repository %q failed: %v", name, err)
			summary.fail(name)
			continue
		}
		summary.Succeeded++
	}

	summary.Print(a.Writer)
	return summary, summary.Err()
}

func (a Applier) applyOne(ctx context.Context, reconciler apply.Reconciler, name, payloadRoot string) error {
	bundlePath, err := bundle.Latest(payloadRoot, name)
	if err != nil {
		return err
	}

	repoDir, err := repolist.Locate(name, a.Config.DestDirs)
	if err != nil {
		if !a.Init {
			return fmt.Errorf("%w\nRun with --init to clone missing repositories from their bundles", err)
		}
		repoDir, err = a.initRepository(ctx, name, bundlePath)
		if err != nil {
			return err
		}
	}

	payloadDir := filepath.Join(payloadRoot, lfs.PayloadDirName)
	if _, err := os.Stat(payloadDir); err != nil {
		payloadDir = ""
	}

	result, err := reconciler.Apply(ctx, repoDir, bundlePath, apply.Options{
		RemoteName: internal.DefaultRemoteName,
		RemoteURL:  a.Config.RemoteURL(name),
		LFS:        a.Config.LFS,
		PayloadDir: payloadDir,
	})
	if err != nil {
		return fmt.Errorf("stopped at %s: %w", result.State, err)
	}

	a.Writer.Printf("%s: pushed %d branches (%s), %d tags\n", name, len(result.Branches), strings.Join(result.Branches, ", "), len(result.Tags))
	return nil
}

// initRepository is the first-time setup path: a clone from the bundle
// file is the degenerate case of the reconciliation protocol, after
// which the normal verify/fetch/push flow proceeds against the fresh
// working copy.
func (a Applier) initRepository(ctx context.Context, name, bundlePath string) (string, error) {
	root := a.Config.DestDirs[0]
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory %q: %w", root, err)
	}

	repoDir := filepath.Join(root, name)
	a.Writer.Printf("%s: destination missing, cloning from bundle\n", name)

	if err := a.Git.Clone(ctx, bundlePath, repoDir); err != nil {
		return "", fmt.Errorf("failed to clone %q from bundle: %w", name, err)
	}

	return repoDir, nil
}
