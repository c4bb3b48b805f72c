package gitcmd

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes git failures the migration logic reacts to
// differently. Classification is by stderr content, since git does not
// expose structured errors across its porcelain commands.
type ErrorType int

const (
	Unknown ErrorType = iota
	EmptyBundle
	UnknownRef
	MissingPrerequisites
	TagExists
	RemoteExists
	PushRejected
	NotARepository
)

// ExecError wraps a failed git invocation with its captured output and
// a classified type.
type ExecError struct {
	Type   ErrorType
	Args   []string
	Dir    string
	Err    error
	Stdout string
	Stderr string
}

func (e *ExecError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func classify(stderr string) ErrorType {
	switch {
	case strings.Contains(stderr, "Refusing to create empty bundle"):
		return EmptyBundle
	case strings.Contains(stderr, "Repository lacks these prerequisite commits"):
		return MissingPrerequisites
	case strings.Contains(stderr, "unknown revision or path not in the working tree"),
		strings.Contains(stderr, "Needed a single revision"),
		strings.Contains(stderr, "bad revision"):
		return UnknownRef
	case strings.Contains(stderr, "[rejected]") && strings.Contains(stderr, "already exists"):
		return TagExists
	case strings.Contains(stderr, "[rejected]"), strings.Contains(stderr, "[remote rejected]"):
		return PushRejected
	case strings.Contains(stderr, "remote") && strings.Contains(stderr, "already exists"):
		return RemoteExists
	case strings.Contains(stderr, "not a git repository"):
		return NotARepository
	}
	return Unknown
}

// HasType reports whether err wraps an ExecError of the given type.
func HasType(err error, t ErrorType) bool {
	var execErr *ExecError
	return errors.As(err, &execErr) && execErr.Type == t
}

// IsEmptyBundle reports the "no commits in range" bundle-create failure,
// which callers treat as a soft skip rather than an error.
func IsEmptyBundle(err error) bool {
	return HasType(err, EmptyBundle)
}

// IsUnknownRef reports a ref that resolved to nothing.
func IsUnknownRef(err error) bool {
	return HasType(err, UnknownRef)
}

// IsMissingPrerequisites reports a bundle verification failure caused by
// ancestor history absent from the destination object store.
func IsMissingPrerequisites(err error) bool {
	return HasType(err, MissingPrerequisites)
}

// IsTagExists reports a push rejection for a tag that already exists on
// the remote. Tags are immutable by convention, so this is benign.
func IsTagExists(err error) bool {
	return HasType(err, TagExists)
}

// IsPushRejected reports a per-ref push rejection, e.g. a protected
// branch rule.
func IsPushRejected(err error) bool {
	return HasType(err, PushRejected)
}
