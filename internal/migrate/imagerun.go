package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/ryanmoran/gitferry/internal/images"
	"github.com/ryanmoran/gitferry/internal/repolist"
)

// ImagesDirName is the directory beside the archives holding saved image
// tarballs. Image tarballs are already compressed layers, so they travel
// next to the archive rather than inside it.
const ImagesDirName = "images"

// ImageRun ferries the container images named in the image manifest.
type ImageRun struct {
	Ferry  images.Ferry
	Config internal.Config
	Writer internal.Writer
}

// Collect saves every manifest image to a tarball under the archive
// directory. Per-image failures do not stop the run.
func (i ImageRun) Collect(ctx context.Context) (Summary, error) {
	refs, err := i.loadManifest()
	if err != nil {
		return Summary{}, err
	}

	dir := filepath.Join(i.Config.ArchiveDir, ImagesDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create image directory %q: %w", dir, err)
	}

	var summary Summary
	for _, ref := range refs {
		path, err := i.Ferry.Save(ctx, ref, dir)
		if err != nil {
			i.Writer.Warningf("image %q failed: %v", ref, err)
			summary.fail(ref.String())
			continue
		}
		i.Writer.Printf("%s: wrote %s\n", ref, filepath.Base(path))
		summary.Succeeded++
	}

	summary.Print(i.Writer)
	return summary, summary.Err()
}

// Apply loads each saved tarball, retags it into the destination
// registry, and pushes it.
func (i ImageRun) Apply(ctx context.Context) (Summary, error) {
	if i.Config.Registry == "" {
		return Summary{}, fmt.Errorf("REGISTRY is required: set the destination registry hostname")
	}

	refs, err := i.loadManifest()
	if err != nil {
		return Summary{}, err
	}

	auth, err := images.RegistryAuth(i.Config.Registry, i.Config.RemoteUser, i.Config.RemoteToken)
	if err != nil {
		return Summary{}, err
	}

	dir := filepath.Join(i.Config.ArchiveDir, ImagesDirName)

	var summary Summary
	for _, ref := range refs {
		if err := i.applyOne(ctx, ref, dir, auth); err != nil {
			i.Writer.Warningf("image %q failed: %v", ref, err)
			summary.fail(ref.String())
			continue
		}
		summary.Succeeded++
	}

	summary.Print(i.Writer)
	return summary, summary.Err()
}

func (i ImageRun) applyOne(ctx context.Context, ref images.Ref, dir, auth string) error {
	tarPath := filepath.Join(dir, ref.TarName())
	if err := i.Ferry.Load(ctx, tarPath); err != nil {
		return err
	}

	target, err := i.Ferry.Retag(ctx, ref, i.Config.Registry, i.Config.RegistryNamespace)
	if err != nil {
		return err
	}

	if err := i.Ferry.Push(ctx, target, auth); err != nil {
		return err
	}

	i.Writer.Printf("%s: pushed %s\n", ref, target)
	return nil
}

func (i ImageRun) loadManifest() ([]images.Ref, error) {
	entries, err := repolist.Load(i.Config.ImageList)
	if err != nil {
		return nil, err
	}

	var refs []images.Ref
	for _, entry := range entries {
		ref, err := images.ParseRef(entry)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, nil
}
