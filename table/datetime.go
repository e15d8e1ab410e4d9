package table

import (
	"strings"
	"time"

	"github.com/teranos/crdb/errors"
)

// DatetimeLayout is the layout of each end of a datetime range.
const DatetimeLayout = "2006/01/02-150405"

// Ranges splits a datetime column value into its ";"-separated ranges.
func Ranges(datetime string) []string {
	if datetime == "" {
		return nil
	}
	parts := strings.Split(datetime, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// MeanDatetime returns the centre of a single "start:stop" range and the
// half-width of the range. Values with several ranges are rejected.
func MeanDatetime(timerange string) (time.Time, time.Duration, error) {
	if strings.Contains(timerange, ";") {
		return time.Time{}, 0, errors.NewInvalidOptionError("argument contains multiple time ranges")
	}
	s1, s2, ok := strings.Cut(timerange, ":")
	if !ok || strings.Contains(s2, ":") {
		return time.Time{}, 0, errors.NewInvalidOptionError("time range %q is not of the form start:stop", timerange)
	}
	t1, err := time.Parse(DatetimeLayout, strings.TrimSpace(s1))
	if err != nil {
		return time.Time{}, 0, errors.Mark(errors.Wrapf(err, "invalid range start %q", s1), errors.ErrInvalidOption)
	}
	t2, err := time.Parse(DatetimeLayout, strings.TrimSpace(s2))
	if err != nil {
		return time.Time{}, 0, errors.Mark(errors.Wrapf(err, "invalid range stop %q", s2), errors.ErrInvalidOption)
	}
	half := t2.Sub(t1) / 2
	return t1.Add(half), half, nil
}
