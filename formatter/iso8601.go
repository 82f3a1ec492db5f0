package formatter

import "time"

// iso8601Layout matches the "YYYY-MM-DDTHH:MM:SSZ" form §4.B requires.
const iso8601Layout = "2006-01-02T15:04:05Z"

// formatISO8601 converts a Unix-seconds timestamp to the ISO-8601 form,
// using the standard library's proleptic Gregorian calendar rather than
// re-deriving month/leap-year arithmetic by hand — the source's
// hand-rolled day-counter is exactly the kind of ambient calendar logic
// §9 flags as error-prone at year boundaries. Negative input (before the
// epoch) is clamped to the epoch literal per spec.
func formatISO8601(unixSeconds int64) string {
	if unixSeconds < 0 {
		return "1970-01-01T00:00:00Z"
	}
	return time.Unix(unixSeconds, 0).UTC().Format(iso8601Layout)
}
