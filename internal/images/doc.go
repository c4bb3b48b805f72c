// Package images ferries container images across the air gap. On the
// source side each listed image is saved to a tarball beside the
// outgoing archive; on the destination side tarballs are loaded,
// retagged into the destination registry namespace, and pushed.
package images
