// Package export writes parsed records as a flat table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/wca/internal/parse"
)

// Row is one record with every column at the top level. Pointer fields are
// nil for rows whose timestamp could not be parsed.
type Row struct {
	TimestampText string  `json:"timestamp_text" yaml:"timestamp_text"`
	Date          *string `json:"date" yaml:"date"`
	Sender        string  `json:"sender" yaml:"sender"`
	Message       string  `json:"message" yaml:"message"`
	OnlyDate      *string `json:"only_date" yaml:"only_date"`
	Year          *int    `json:"year" yaml:"year"`
	MonthNum      *int    `json:"month_num" yaml:"month_num"`
	Month         *string `json:"month" yaml:"month"`
	Day           *int    `json:"day" yaml:"day"`
	DayName       *string `json:"day_name" yaml:"day_name"`
	Hour          *int    `json:"hour" yaml:"hour"`
	Minute        *int    `json:"minute" yaml:"minute"`
	AmPm          *string `json:"am_pm" yaml:"am_pm"`
	Period        *string `json:"period" yaml:"period"`
}

var Columns = []string{
	"timestamp_text", "date", "sender", "message", "only_date", "year", "month_num",
	"month", "day", "day_name", "hour", "minute", "am_pm", "period",
}

func NewRow(r parse.Record) Row {
	row := Row{
		TimestampText: r.TimestampText,
		Sender:        r.Sender,
		Message:       r.Message,
	}
	if r.Date == nil || r.Features == nil {
		return row
	}
	f := *r.Features
	date := r.Date.Format(time.DateTime)
	row.Date = &date
	row.OnlyDate = &f.OnlyDate
	row.Year = &f.Year
	row.MonthNum = &f.MonthNum
	row.Month = &f.Month
	row.Day = &f.Day
	row.DayName = &f.DayName
	row.Hour = &f.Hour
	row.Minute = &f.Minute
	row.AmPm = &f.AmPm
	row.Period = &f.Period
	return row
}

func Rows(records []parse.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = NewRow(r)
	}
	return rows
}

// Write encodes records in format: "tsv", "csv", "json" or "yaml".
func Write(w io.Writer, format string, records []parse.Record) error {
	rows := Rows(records)
	switch format {
	case "", "tsv":
		return writeDelimited(w, '\t', rows)
	case "csv":
		return writeDelimited(w, ',', rows)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeDelimited(w io.Writer, comma rune, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.TimestampText, str(r.Date), r.Sender, r.Message, str(r.OnlyDate),
			num(r.Year), num(r.MonthNum), str(r.Month), num(r.Day), str(r.DayName),
			num(r.Hour), num(r.Minute), str(r.AmPm), str(r.Period),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
