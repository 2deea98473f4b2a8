// Package timeutil holds the timestamp formats used in logs and responses.
package timeutil

import "time"

// RFC3339Millis is RFC 3339 UTC with fixed millisecond precision, used in responses.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

// RFC3339Micros is RFC 3339 UTC with fixed microsecond precision, used in logs.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// Time marshals to JSON as RFC3339Millis in UTC.
type Time struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(RFC3339Millis) + `"`), nil
}

// Now returns the current time.
func Now() Time {
	return Time{Time: time.Now()}
}
