package parse

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return opts
}

func TestPreprocess_AuthoredAndNotification(t *testing.T) {
	data := "12/1/24, 9:05 PM - Alice: Hello there\n12/1/24, 9:06 PM - Bob left the group\n"

	res, err := Preprocess(data, quietOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 0, res.Unparsed)

	alice := res.Records[0]
	assert.Equal(t, "Alice", alice.Sender)
	assert.Equal(t, "Hello there", alice.Message)
	assert.Equal(t, KindMessage, alice.Kind)
	require.NotNil(t, alice.Features)
	assert.Equal(t, 21, alice.Features.Hour)
	assert.Equal(t, "9-10 PM", alice.Features.Period)

	bob := res.Records[1]
	assert.Equal(t, GroupNotification, bob.Sender)
	assert.Equal(t, "Bob left the group", bob.Message)
	assert.Equal(t, KindNotification, bob.Kind)
	require.NotNil(t, bob.Features)
	assert.Equal(t, 21, bob.Features.Hour)
	assert.Equal(t, 6, bob.Features.Minute)
	assert.Equal(t, "9-10 PM", bob.Features.Period)
}

func TestPreprocess_DerivedFields(t *testing.T) {
	res, err := Preprocess("12/1/24, 9:05 PM - Alice: hi\n", quietOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	require.NotNil(t, rec.Date)
	assert.Equal(t, time.Date(2024, time.January, 12, 21, 5, 0, 0, time.UTC), *rec.Date)
	assert.Equal(t, &Features{
		OnlyDate: "2024-01-12",
		Year:     2024,
		MonthNum: 1,
		Month:    "January",
		Day:      12,
		DayName:  "Friday",
		Hour:     21,
		Minute:   5,
		AmPm:     "PM",
		Period:   "9-10 PM",
	}, rec.Features)
}

func TestPreprocess_NoBoundaries(t *testing.T) {
	for _, data := range []string{"", "just some text\nwith lines", "12/1/24 9:05 PM Alice: no comma"} {
		res, err := Preprocess(data, quietOptions())
		require.NoError(t, err)
		assert.Empty(t, res.Records)
		assert.Zero(t, res.Unparsed)
	}
}

func TestPreprocess_RowCountMatchesBoundaries(t *testing.T) {
	data := strings.Join([]string{
		"Messages and calls are end-to-end encrypted.",
		"25/12/2023, 23:59 - Carol: late night",
		"26/12/2023, 00:01 - Carol: and past midnight",
		"with a second line mentioning 26/12/2023 at 00:01",
		"26/12/2023, 12:30 - Dave changed the subject to \"Trip\"",
		"",
	}, "\n")

	res, err := Preprocess(data, quietOptions())
	require.NoError(t, err)
	assert.Len(t, res.Records, len(boundaryRe.FindAllString(data, -1)))
	require.Len(t, res.Records, 3)

	assert.Equal(t, "11-12 PM", res.Records[0].Features.Period)
	assert.Equal(t, "12-1 AM", res.Records[1].Features.Period)
	assert.Equal(t, "0-1 PM", res.Records[2].Features.Period)
	assert.Equal(t, "and past midnight\nwith a second line mentioning 26/12/2023 at 00:01", res.Records[1].Message)
	assert.Equal(t, 2, res.Records[0].Line)
	assert.Equal(t, 3, res.Records[1].Line)
	assert.Equal(t, 5, res.Records[2].Line)
}

func TestPreprocess_UnparsedRowsKeepMessage(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	data := "31/2/24, 10:00 - Alice: impossible date\n1/1/24, 10:00 - Bob: fine\n"
	res, err := Preprocess(data, opts)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Unparsed)

	bad := res.Records[0]
	assert.Nil(t, bad.Date)
	assert.Nil(t, bad.Features)
	assert.Equal(t, "Alice", bad.Sender)
	assert.Equal(t, "impossible date", bad.Message)

	assert.NotNil(t, res.Records[1].Features)
	assert.Contains(t, buf.String(), "rows could not be parsed")
	assert.Contains(t, buf.String(), "count=1")
}

func TestPreprocess_NoWarningWhenAllParsed(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	_, err := Preprocess("1/1/24, 10:00 - Bob: fine\n", opts)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestPreprocess_PeriodConsistentWithHour(t *testing.T) {
	var b strings.Builder
	for h := 0; h < 24; h++ {
		fmt.Fprintf(&b, "3/4/2024, %d:15 - Eve: ping\n", h)
	}

	res, err := Preprocess(b.String(), quietOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, 24)

	valid := make(map[string]bool)
	for _, l := range PeriodLabels() {
		valid[l] = true
	}
	for h, rec := range res.Records {
		require.NotNil(t, rec.Features, "hour %d", h)
		assert.Equal(t, h, rec.Features.Hour)
		assert.Equal(t, PeriodLabel(h), rec.Features.Period)
		assert.True(t, valid[rec.Features.Period])
	}
}

func TestPreprocess_RoundTripBody(t *testing.T) {
	data := "12/1/24, 9:05 PM - Alice: Hello there\n" +
		"12/1/24, 9:06 PM - Bob left the group\n" +
		"12/1/24, 9:07 PM - Team:A: ratio is 3:1\n" +
		"12/1/24, 9:08 PM - : starts with a separator\n"

	segments, err := Segment(data)
	require.NoError(t, err)
	res, err := Preprocess(data, quietOptions())
	require.NoError(t, err)
	require.Len(t, res.Records, len(segments))

	for i, rec := range res.Records {
		assert.Equal(t, segments[i].Body, rec.Body())
	}
	assert.Equal(t, "Team:A", res.Records[2].Sender)
	assert.Equal(t, GroupNotification, res.Records[3].Sender)
}

func TestPreprocess_PreserveColons(t *testing.T) {
	data := "12/1/24, 9:05 PM - Alice: note: bring snacks\n"

	res, err := Preprocess(data, quietOptions())
	require.NoError(t, err)
	assert.Equal(t, "note bring snacks", res.Records[0].Message)

	opts := quietOptions()
	opts.PreserveColons = true
	res, err = Preprocess(data, opts)
	require.NoError(t, err)
	assert.Equal(t, "note: bring snacks", res.Records[0].Message)
}
