package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		timestamps []string
		bodies     []string
	}{
		{
			name: "empty",
			data: "",
		},
		{
			name:       "drops banner",
			data:       "Export banner\n12/1/24, 9:05 PM - Alice: hi\n",
			timestamps: []string{"12/1/24, 9:05 PM - "},
			bodies:     []string{"Alice: hi"},
		},
		{
			name:       "24 hour and four digit year",
			data:       "01/02/2023, 17:45 - Bob: a\n1/2/2023, 7:05 - Bob: b",
			timestamps: []string{"01/02/2023, 17:45 - ", "1/2/2023, 7:05 - "},
			bodies:     []string{"Bob: a", "Bob: b"},
		},
		{
			name:       "narrow no-break space before meridiem",
			data:       "12/1/24, 9:05\u202fPM - Alice: hi",
			timestamps: []string{"12/1/24, 9:05\u202fPM - "},
			bodies:     []string{"Alice: hi"},
		},
		{
			name:       "multi line body",
			data:       "12/1/24, 9:05 PM - Alice: one\ntwo\r\n\n12/1/24, 9:06 PM - Alice: three",
			timestamps: []string{"12/1/24, 9:05 PM - ", "12/1/24, 9:06 PM - "},
			bodies:     []string{"Alice: one\ntwo", "Alice: three"},
		},
		{
			name:       "timestamp-like text in body",
			data:       "12/1/24, 9:05 PM - Alice: see you 13/1/24 9:05 PM or 13/1/245, 9:5 - ok",
			timestamps: []string{"12/1/24, 9:05 PM - "},
			bodies:     []string{"Alice: see you 13/1/24 9:05 PM or 13/1/245, 9:5 - ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := Segment(tt.data)
			require.NoError(t, err)
			require.Len(t, segments, len(tt.timestamps))
			for i, seg := range segments {
				assert.Equal(t, tt.timestamps[i], seg.TimestampText)
				assert.Equal(t, tt.bodies[i], seg.Body)
				assert.True(t, IsBoundary(seg.TimestampText))
			}
		})
	}
}

func TestSegment_Offsets(t *testing.T) {
	data := "banner\n\n12/1/24, 9:05 PM - Alice: hi\n12/1/24, 9:06 PM - Bob: yo"
	segments, err := Segment(data)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, 8, segments[0].Offset)
	assert.Equal(t, 3, segments[0].Line)
	assert.Equal(t, 4, segments[1].Line)
	assert.Equal(t, "12/1/24, 9:06 PM - ", data[segments[1].Offset:segments[1].Offset+len(segments[1].TimestampText)])
}

func TestIsBoundary(t *testing.T) {
	assert.True(t, IsBoundary("12/1/24, 9:05 PM - "))
	assert.True(t, IsBoundary("1/1/2024, 23:59 - "))
	assert.False(t, IsBoundary("invalid-date"))
	assert.False(t, IsBoundary("12/1/24, 9:5 PM - "))
	assert.False(t, IsBoundary("12/1/202, 9:05 PM - "))
	assert.False(t, IsBoundary("x12/1/24, 9:05 PM - "))
}

func TestSegment_BodiesPairWithBoundaries(t *testing.T) {
	inputs := []string{
		"12/1/24, 9:05 - ",
		"12/1/24, 9:05 - 12/1/24, 9:06 - ",
		"banner\n12/1/24, 9:05 - a\n12/1/24, 9:06 - \n",
		"12/1/24, 9:05 - says 1/2/24, 3:04 - inside\n",
	}
	for _, in := range inputs {
		segments, err := Segment(in)
		require.NoError(t, err, in)
		assert.NotErrorIs(t, err, ErrSegmentMismatch)
		assert.Len(t, segments, len(boundaryRe.FindAllStringIndex(in, -1)), in)
	}
}
