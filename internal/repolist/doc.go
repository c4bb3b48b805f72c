// Package repolist reads the plain-text repository and image list files
// and locates repository working copies within the configured search
// directories.
package repolist
