// Package durecord maps raw DocuSign API objects to the flat string-keyed
// rows the host's upsert sink expects, guarding every primary key and
// coercing every value to string (spec §3, §4.5).
package durecord

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// str coerces any JSON-decoded value to its string form, matching the
// source's blanket str(...) coercion. nil becomes "".
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// strOr is str with a fallback for the empty/missing case (e.g. routing
// order and page count default to "0").
func strOr(v any, fallback string) string {
	s := str(v)
	if s == "" {
		return fallback
	}
	return s
}

var timestampLayouts = []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05.000Z"}

// parseTimestamp parses the ISO 8601 timestamps DocuSign returns, trying the
// handful of layouts its API actually emits.
func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// formatHours renders an hour count the way the source's str(float) does:
// always with a decimal point, e.g. 36 -> "36.0".
func formatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
