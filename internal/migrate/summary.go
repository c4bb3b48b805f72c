package migrate

import (
	"fmt"
	"strings"

	"github.com/ryanmoran/gitferry/internal"
)

// Summary counts per-repository outcomes for one run. Soft skips (empty
// ranges, missing branches) are not failures.
type Summary struct {
	Succeeded   int
	Skipped     int
	Failed      int
	FailedRepos []string
}

func (s *Summary) fail(name string) {
	s.Failed++
	s.FailedRepos = append(s.FailedRepos, name)
}

// Print writes the end-of-run summary. It is always printed, whatever
// the outcome.
func (s Summary) Print(w internal.Writer) {
	w.Printf("done: %d succeeded, %d skipped, %d failed\n", s.Succeeded, s.Skipped, s.Failed)
	if s.Failed > 0 {
		w.Printf("failed: %s\n", strings.Join(s.FailedRepos, ", "))
	}
}

// Err returns a non-nil error when any repository failed, so the process
// exits non-zero after the whole list has been attempted.
func (s Summary) Err() error {
	if s.Failed > 0 {
		return fmt.Errorf("%d repositories failed: %s", s.Failed, strings.Join(s.FailedRepos, ", "))
	}
	return nil
}
