package extract

import "time"

// timestampLayout matches the bracketed ISO-8601 token the game writes at the
// start of most lines, e.g. <2026-02-06T12:38:05.357Z>.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// ParseTimestamp extracts the event timestamp from a line's leading bracketed
// token. Lines without a parsable timestamp fall back to the current wall
// clock; timestamp parsing is never fatal.
func ParseTimestamp(line string) time.Time {
	m := reTimestamp.FindStringSubmatch(line)
	if m == nil {
		return time.Now().UTC()
	}
	ts, err := time.Parse(timestampLayout, m[1])
	if err != nil {
		return time.Now().UTC()
	}
	return ts
}
