package parse

import "time"

// GroupNotification is the sender recorded for lines without a "name: " prefix.
const GroupNotification = "group_notification"

const (
	KindMessage      = "message"
	KindNotification = "notification"
)

type RawSegment struct {
	TimestampText string
	Body          string
	Offset        int // byte offset of the boundary in the transcript
	Line          int // 1-based line of the boundary
}

type Features struct {
	OnlyDate string // "2006-01-02"
	Year     int
	MonthNum int
	Month    string
	Day      int
	DayName  string
	Hour     int
	Minute   int
	AmPm     string
	Period   string
}

type Record struct {
	Index         int
	TimestampText string
	Date          *time.Time // nil when the timestamp could not be parsed
	Sender        string
	Message       string
	Kind          string // KindMessage or KindNotification
	Line          int
	Features      *Features // nil iff Date is nil
}

// Body reconstructs the message body as it appeared after the timestamp.
func (r Record) Body() string {
	if r.Kind == KindNotification {
		return r.Message
	}
	return r.Sender + ": " + r.Message
}

type Result struct {
	Records  []Record
	Unparsed int
}
