// Package archive packages per-repository bundle directories into a
// single transportable file and unpacks it on the other side of the air
// gap. The format is a gzipped tar preserving the directory tree, with
// an optional base64 layer (".txt" suffix) for transports that only
// accept text.
package archive
