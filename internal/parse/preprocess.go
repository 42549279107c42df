package parse

import (
	"log/slog"
	"time"
)

type Options struct {
	Location       *time.Location // nil means UTC
	MonthFirst     bool           // retry month first when day first is impossible
	PreserveColons bool
	Logger         *slog.Logger // nil means slog.Default()
}

// DefaultOptions matches how phone exports are usually read.
func DefaultOptions() Options {
	return Options{MonthFirst: true}
}

// Preprocess runs the whole transcript through segmentation, timestamp
// parsing, classification and feature extraction. Only a segmentation
// mismatch is an error; unparseable timestamps leave Date and Features nil
// and are counted in Result.Unparsed.
func Preprocess(data string, opts Options) (*Result, error) {
	segments, err := Segment(data)
	if err != nil {
		return nil, err
	}

	result := &Result{Records: make([]Record, 0, len(segments))}
	for i, seg := range segments {
		rec := Record{
			Index:         i,
			TimestampText: seg.TimestampText,
			Line:          seg.Line,
		}

		if t, ok := ParseTimestamp(seg.TimestampText, opts.Location, opts.MonthFirst); ok {
			rec.Date = &t
			rec.Features = ExtractFeatures(t)
		} else {
			result.Unparsed++
		}

		switch m := Classify(seg.Body, opts.PreserveColons).(type) {
		case AuthoredMessage:
			rec.Sender = m.Sender
			rec.Message = m.Body
			rec.Kind = KindMessage
		case Notification:
			rec.Sender = GroupNotification
			rec.Message = m.Body
			rec.Kind = KindNotification
		}

		result.Records = append(result.Records, rec)
	}

	if result.Unparsed > 0 {
		logger := opts.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("rows could not be parsed", "count", result.Unparsed, "rows", len(result.Records))
	}

	return result, nil
}
