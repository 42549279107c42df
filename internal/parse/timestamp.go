package parse

import (
	"strings"
	"time"
)

var dayFirstLayouts = []string{
	"2/1/06, 15:04",
	"2/1/2006, 15:04",
	"2/1/06, 3:04 PM",
	"2/1/2006, 3:04 PM",
}

var monthFirstLayouts = []string{
	"1/2/06, 15:04",
	"1/2/2006, 15:04",
	"1/2/06, 3:04 PM",
	"1/2/2006, 3:04 PM",
}

// normalizeTimestamp turns a raw boundary into "D/M/YY, H:MM[ PM]".
// strings.Fields also splits on U+00A0 and U+202F.
func normalizeTimestamp(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(strings.TrimSuffix(s, "-"))
}

// ParseTimestamp reads a boundary day first. With monthFirst set, a text
// that has no valid day-first reading (e.g. "1/13/24") is retried month
// first. The bool is false when no layout yields a valid date and time.
//
// Two-digit years use Go's fixed pivot: 69-99 are 19xx and 00-68 are 20xx,
// so "12/1/69" is 1969, not the nearest century to today.
func ParseTimestamp(text string, loc *time.Location, monthFirst bool) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s := normalizeTimestamp(text)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := tryLayouts(s, dayFirstLayouts, loc); ok {
		return t, true
	}
	if monthFirst {
		return tryLayouts(s, monthFirstLayouts, loc)
	}
	return time.Time{}, false
}

func tryLayouts(s string, layouts []string, loc *time.Location) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
