package images

import (
	"fmt"
	"strings"
)

// Ref is one parsed image manifest entry of the form "project/name:tag".
type Ref struct {
	Project string
	Name    string
	Tag     string
}

// ParseRef parses a manifest entry. The tag defaults to "latest" when
// omitted.
func ParseRef(entry string) (Ref, error) {
	repo, tag, ok := strings.Cut(entry, ":")
	if !ok {
		tag = "latest"
	}

	project, name, ok := strings.Cut(repo, "/")
	if !ok || project == "" || name == "" || tag == "" {
		return Ref{}, fmt.Errorf("invalid image entry %q: expected project/name:tag", entry)
	}

	return Ref{
		Project: project,
		Name:    name,
		Tag:     tag,
	}, nil
}

// String returns the source-side image reference.
func (r Ref) String() string {
	return fmt.Sprintf("%s/%s:%s", r.Project, r.Name, r.Tag)
}

// TarName is the filename the image is saved under inside the archive.
func (r Ref) TarName() string {
	return fmt.Sprintf("%s_%s_%s.tar", r.Project, r.Name, r.Tag)
}

// Target builds the destination reference for the image. The registry
// namespace replaces the source project when configured; otherwise the
// source project is kept.
func (r Ref) Target(registry, namespace string) string {
	if namespace == "" {
		namespace = r.Project
	}
	return fmt.Sprintf("%s/%s/%s:%s", registry, namespace, r.Name, r.Tag)
}
