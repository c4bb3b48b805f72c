// Package internal contains shared types and utilities for gitferry.
//
// It provides configuration loading, lookback parsing, run stamping,
// cleanup orchestration, and I/O abstractions used across the bundle,
// apply, archive, and images packages.
package internal
