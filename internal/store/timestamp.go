package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// epochMillisFloor separates epoch-second from epoch-millisecond values.
// Anything at or above it is far beyond year 9999 when read as seconds.
const epochMillisFloor = 1e12

// EpochParts is a seconds+nanoseconds timestamp, the shape some webhook
// payloads serialize instants in.
type EpochParts struct {
	Seconds int64 `json:"seconds"`
	Nanos   int64 `json:"nanos"`
}

var textLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp normalizes the timestamp shapes the transports deliver —
// native instants, RFC3339/SQLite datetime strings, epoch seconds, epoch
// milliseconds, and seconds+nanos objects — into a single UTC instant.
// Everything past this function works with time.Time only.
func ParseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case EpochParts:
		return time.Unix(t.Seconds, t.Nanos).UTC(), nil
	case map[string]any:
		return parseParts(t)
	case int:
		return fromEpoch(float64(t)), nil
	case int64:
		return fromEpoch(float64(t)), nil
	case float64:
		return fromEpoch(t), nil
	case string:
		return parseText(t)
	case nil:
		return time.Time{}, fmt.Errorf("nil timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

// ParseTimestampOr normalizes v, substituting fallback for anything
// unparseable so callers on the inbound path never fail on a bad clock.
func ParseTimestampOr(v any, fallback time.Time) time.Time {
	t, err := ParseTimestamp(v)
	if err != nil || t.IsZero() {
		return fallback.UTC()
	}
	return t
}

func fromEpoch(n float64) time.Time {
	if n >= epochMillisFloor {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec := int64(n)
	nanos := int64((n - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nanos).UTC()
}

func parseParts(m map[string]any) (time.Time, error) {
	sec, ok := numeric(m["seconds"])
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp object missing seconds")
	}
	nanos, _ := numeric(m["nanos"])
	return time.Unix(int64(sec), int64(nanos)).UTC(), nil
}

func parseText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	// Numeric strings are epoch values.
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(n), nil
	}

	for _, layout := range textLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
