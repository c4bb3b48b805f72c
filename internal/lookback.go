package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLookback converts a relative duration string such as "1 month ago"
// or "2 weeks" into the absolute cutoff time it denotes relative to now.
// Supported units: hour, day, week, month, year (singular or plural). The
// trailing "ago" is optional. Parsing here, rather than delegating to
// git's approxidate, keeps the cutoff deterministic and testable; git
// only ever sees the formatted absolute date.
func ParseLookback(s string, now time.Time) (time.Time, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) == 3 && fields[2] == "ago" {
		fields = fields[:2]
	}
	if len(fields) != 2 {
		return time.Time{}, fmt.Errorf("invalid LOOKBACK %q: expected a duration like \"1 month ago\"", s)
	}

	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return time.Time{}, fmt.Errorf("invalid LOOKBACK %q: %q is not a non-negative number", s, fields[0])
	}

	switch strings.TrimSuffix(fields[1], "s") {
	case "hour":
		return now.Add(-time.Duration(count) * time.Hour), nil
	case "day":
		return now.AddDate(0, 0, -count), nil
	case "week":
		return now.AddDate(0, 0, -7*count), nil
	case "month":
		return now.AddDate(0, -count, 0), nil
	case "year":
		return now.AddDate(-count, 0, 0), nil
	}

	return time.Time{}, fmt.Errorf("invalid LOOKBACK %q: unknown unit %q (use hour, day, week, month, or year)", s, fields[1])
}
