package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrSegmentMismatch means the split bodies and the matched timestamps could
// not be paired one to one.
var ErrSegmentMismatch = errors.New("segment mismatch")

// ws covers the separators real exports put around the time, including the
// no-break and narrow no-break spaces newer phones emit before AM/PM.
const ws = `[\s\x{00A0}\x{202F}]`

// boundaryRe matches "D/M/YY(YY), H:MM[ AM|PM] - ".
var boundaryRe = regexp.MustCompile(
	`\d{1,2}/\d{1,2}/(?:\d{4}|\d{2}),` + ws + `\d{1,2}:\d{2}` + ws + `(?:AM|PM)?` + ws + `?-` + ws,
)

// Segment splits a transcript into one RawSegment per timestamp boundary.
// Anything before the first boundary (export banner) is dropped.
func Segment(data string) ([]RawSegment, error) {
	bodies := boundaryRe.Split(data, -1)[1:]
	locs := boundaryRe.FindAllStringIndex(data, -1)
	// Split and FindAll share one matcher, so this only guards the pairing invariant.
	if len(bodies) != len(locs) {
		return nil, fmt.Errorf("%w: %d bodies, %d timestamps", ErrSegmentMismatch, len(bodies), len(locs))
	}

	segments := make([]RawSegment, 0, len(locs))
	line, last := 1, 0
	for i, loc := range locs {
		line += strings.Count(data[last:loc[0]], "\n")
		last = loc[0]
		segments = append(segments, RawSegment{
			TimestampText: data[loc[0]:loc[1]],
			Body:          strings.TrimRight(bodies[i], "\r\n"),
			Offset:        loc[0],
			Line:          line,
		})
	}
	return segments, nil
}

// IsBoundary reports whether s is exactly one timestamp boundary.
func IsBoundary(s string) bool {
	loc := boundaryRe.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
