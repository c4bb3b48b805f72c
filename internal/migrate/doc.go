// Package migrate orchestrates full collector and applier runs:
// iterating the repository list, invoking selection, bundling, archive
// packaging, and reconciliation, and enforcing the run-level
// continue-on-error policy with a final success/failure summary.
package migrate
