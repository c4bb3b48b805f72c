package lfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/gitcmd"
)

// PayloadDirName is the subdirectory beside each bundle that mirrors the
// content-hash object layout of the source repository's cache.
const PayloadDirName = "lfs"

// Carrier detects, exports, and imports large objects for a repository.
type Carrier struct {
	git    gitcmd.Git
	writer internal.Writer
}

// NewCarrier creates a Carrier.
func NewCarrier(git gitcmd.Git, writer internal.Writer) Carrier {
	return Carrier{
		git:    git,
		writer: writer,
	}
}

// Detect reports whether the repository uses large-object storage: the
// tracked-attribute configuration declares the lfs filter, or the local
// object cache is non-empty.
func (c Carrier) Detect(dir string) bool {
	attributes, err := os.ReadFile(filepath.Join(dir, ".gitattributes"))
	if err == nil && strings.Contains(string(attributes), "filter=lfs") {
		return true
	}

	return hasEntries(objectsDir(dir))
}

// Export fetches large objects for the repository and copies them by
// content hash into a payload directory under destDir. When fullHistory
// is false only the current checkout's objects are fetched. Returns
// whether a payload was written.
//
// Fetch failures are retried once with the narrower checkout-only scope,
// then treated as "no objects found" rather than aborting the run.
func (c Carrier) Export(ctx context.Context, dir, destDir string, fullHistory bool) (bool, error) {
	err := c.git.LFSFetch(ctx, dir, fullHistory)
	if err != nil && fullHistory {
		c.writer.Warningf("lfs fetch --all failed in %s, retrying current checkout only: %v", dir, err)
		err = c.git.LFSFetch(ctx, dir, false)
	}
	if err != nil {
		c.writer.Warningf("lfs fetch failed in %s, treating as no objects: %v", dir, err)
		return false, nil
	}

	objects := objectsDir(dir)
	if !hasEntries(objects) {
		return false, nil
	}

	payload := filepath.Join(destDir, PayloadDirName)
	if err := copy.Copy(objects, payload); err != nil {
		return false, fmt.Errorf("failed to copy lfs objects from %q to %q: %w\nCheck disk space and permissions", objects, payload, err)
	}

	return true, nil
}

// Import copies a payload directory into the destination repository's
// local object cache. It must run before the push so the objects are
// present when refs referencing them land on the remote.
func (c Carrier) Import(ctx context.Context, dir, payloadDir string) error {
	if !hasEntries(payloadDir) {
		return nil
	}

	objects := objectsDir(dir)
	if err := os.MkdirAll(objects, 0755); err != nil {
		return fmt.Errorf("failed to create lfs object cache %q: %w", objects, err)
	}

	if err := copy.Copy(payloadDir, objects); err != nil {
		return fmt.Errorf("failed to import lfs objects into %q: %w\nCheck disk space and permissions", objects, err)
	}

	return nil
}

// Push uploads all local large objects to the remote's LFS endpoint.
func (c Carrier) Push(ctx context.Context, dir, remote string) error {
	if err := c.git.LFSPush(ctx, dir, remote, true); err != nil {
		return fmt.Errorf("failed to push lfs objects to remote %q: %w\nCheck credentials and that the remote supports LFS", remote, err)
	}
	return nil
}

func objectsDir(dir string) string {
	return filepath.Join(dir, ".git", "lfs", "objects")
}

func hasEntries(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}
