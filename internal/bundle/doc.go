// Package bundle computes which refs, ranges, and tags to capture for a
// repository and materializes them into git bundle files.
//
// The Selector implements the incremental ref and tag selection: branch
// tips resolved preferring remote-tracking refs, boundary pairs computed
// against the lookback cutoff, and tags filtered by date and
// reachability from the selected tips.
package bundle
