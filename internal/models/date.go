package models

import (
	"fmt"
	"time"
)

// DateLayout is the plain calendar date form accepted next to RFC3339.
const DateLayout = "2006-01-02"

// ParseDate parses s as RFC3339 or YYYY-MM-DD. Plain dates are midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}
