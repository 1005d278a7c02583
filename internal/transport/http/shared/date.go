package shared

import "time"

const dateOnly = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD. An empty value means "not
// provided" and parses to the zero time so callers can default it.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateOnly, value)
}

// FormatDate renders a date-only string for responses that describe pay
// period boundaries.
func FormatDate(t time.Time) string {
	return t.Format(dateOnly)
}
