package internal

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the seconds-resolution timestamp embedded in bundle
// and archive filenames. It sorts lexicographically in time order, which
// is what makes "latest by filename" deterministic.
const TimestampLayout = "2006-01-02_15-04-05"

// ArchivePrefix is the filename prefix of every packaged archive.
const ArchivePrefix = "migration-suite"

// Stamp identifies one run. All artifact names produced during the run
// share its timestamp so a bundle can be matched to the archive that
// carried it.
type Stamp struct {
	t time.Time
}

// NewStamp creates a run identity from the given time.
func NewStamp(t time.Time) Stamp {
	return Stamp{t: t}
}

// String returns the timestamp portion shared by all artifact names.
func (s Stamp) String() string {
	return s.t.Format(TimestampLayout)
}

// BundleName returns the bundle filename for one repository,
// e.g. "svc-a_2024-05-01_12-00-00.bundle".
func (s Stamp) BundleName(repo string) string {
	return fmt.Sprintf("%s_%s.bundle", repo, s.String())
}

// ArchiveName returns the archive filename for this run. The ".txt"
// suffix signals a base64 text encoding layered over the tar.gz.
func (s Stamp) ArchiveName(textEncode bool) string {
	name := fmt.Sprintf("%s_%s.tar.gz", ArchivePrefix, s.String())
	if textEncode {
		name += ".txt"
	}
	return name
}

// ParseStampSuffix extracts the timestamp from an artifact filename of
// the form "<prefix>_<timestamp>.<ext>". The second return value is
// false when the name does not carry a parseable timestamp.
func ParseStampSuffix(filename, ext string) (time.Time, bool) {
	name := strings.TrimSuffix(filename, ext)
	idx := strings.LastIndex(name, "_")
	if idx < 0 {
		return time.Time{}, false
	}
	// The layout itself contains an underscore between date and time.
	idx = strings.LastIndex(name[:idx], "_")
	if idx < 0 {
		return time.Time{}, false
	}

	t, err := time.Parse(TimestampLayout, name[idx+1:])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
