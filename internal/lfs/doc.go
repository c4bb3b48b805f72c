// Package lfs carries large objects alongside bundles. Large files are
// stored outside the history graph and referenced by content hash, so
// bundles alone do not move them; the Carrier copies the local object
// cache into a payload directory on the way out and back into the
// destination cache on the way in.
package lfs
