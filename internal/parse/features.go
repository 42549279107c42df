package parse

import (
	"fmt"
	"time"
)

// PeriodLabel buckets an hour into a one-hour range on a 12-hour clock.
func PeriodLabel(hour int) string {
	switch {
	case hour == 23:
		return "11-12 PM"
	case hour == 0:
		return "12-1 AM"
	case hour < 12:
		return fmt.Sprintf("%d-%d AM", hour, hour+1)
	default:
		return fmt.Sprintf("%d-%d PM", hour-12, hour-11)
	}
}

// PeriodLabels lists every label PeriodLabel can return, in hour order.
func PeriodLabels() []string {
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = PeriodLabel(h)
	}
	return labels
}

// ExtractFeatures derives the calendar and time-of-day fields of t.
func ExtractFeatures(t time.Time) *Features {
	return &Features{
		OnlyDate: t.Format(time.DateOnly),
		Year:     t.Year(),
		MonthNum: int(t.Month()),
		Month:    t.Month().String(),
		Day:      t.Day(),
		DayName:  t.Weekday().String(),
		Hour:     t.Hour(),
		Minute:   t.Minute(),
		AmPm:     t.Format("PM"),
		Period:   PeriodLabel(t.Hour()),
	}
}
