// Package stats aggregates parsed chat records into activity summaries.
package stats

import (
	"bufio"
	"cmp"
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Zuo-Peng/wca/internal/parse"
)

// Overall selects every sender.
const Overall = "Overall"

// MediaOmitted is what exports write in place of attachments.
const MediaOmitted = "<Media omitted>"

var linkRe = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

type Summary struct {
	Messages int `json:"messages"`
	Words    int `json:"words"`
	Media    int `json:"media"`
	Links    int `json:"links"`
}

type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type UserCount struct {
	Sender  string  `json:"sender"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type Heatmap struct {
	Days    []string `json:"days"`
	Periods []string `json:"periods"`
	Counts  [][]int  `json:"counts"` // [day][period]
}

type Report struct {
	User          string      `json:"user"`
	Summary       Summary     `json:"summary"`
	BusiestUsers  []UserCount `json:"busiest_users,omitempty"`
	CommonWords   []Count     `json:"common_words"`
	Monthly       []Count     `json:"monthly"`
	Daily         []Count     `json:"daily"`
	WeekActivity  []Count     `json:"week_activity"`
	MonthActivity []Count     `json:"month_activity"`
	Heatmap       Heatmap     `json:"heatmap"`
}

// Build computes every aggregate for user ("" or Overall for everyone).
// Busiest users are only reported for the overall view.
func Build(records []parse.Record, user string, stopWords map[string]bool) Report {
	if user == "" {
		user = Overall
	}
	rs := FilterUser(records, user)
	r := Report{
		User:          user,
		Summary:       Summarize(rs),
		CommonWords:   MostCommonWords(rs, stopWords, 20),
		Monthly:       Monthly(rs),
		Daily:         Daily(rs),
		WeekActivity:  WeekActivity(rs),
		MonthActivity: MonthActivity(rs),
		Heatmap:       ActivityHeatmap(rs),
	}
	if user == Overall {
		r.BusiestUsers = BusiestUsers(rs)
	}
	return r
}

func FilterUser(records []parse.Record, user string) []parse.Record {
	if user == "" || user == Overall {
		return records
	}
	var out []parse.Record
	for _, r := range records {
		if r.Sender == user {
			out = append(out, r)
		}
	}
	return out
}

// Senders lists distinct authors in first-seen order.
func Senders(records []parse.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if r.Kind != parse.KindMessage || seen[r.Sender] {
			continue
		}
		seen[r.Sender] = true
		out = append(out, r.Sender)
	}
	return out
}

func Summarize(records []parse.Record) Summary {
	var s Summary
	for _, r := range records {
		s.Messages++
		s.Words += len(strings.Fields(r.Message))
		if strings.TrimSpace(r.Message) == MediaOmitted {
			s.Media++
		}
		s.Links += len(linkRe.FindAllString(r.Message, -1))
	}
	return s
}

// BusiestUsers ranks authors by message count; notifications are ignored.
func BusiestUsers(records []parse.Record) []UserCount {
	counts := make(map[string]int)
	total := 0
	for _, r := range records {
		if r.Kind != parse.KindMessage {
			continue
		}
		counts[r.Sender]++
		total++
	}

	out := make([]UserCount, 0, len(counts))
	for sender, n := range counts {
		out = append(out, UserCount{
			Sender:  sender,
			Count:   n,
			Percent: math.Round(float64(n)/float64(total)*10000) / 100,
		})
	}
	slices.SortFunc(out, func(a, b UserCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Sender, b.Sender)
	})
	return out
}

// MostCommonWords counts lower-cased words of authored, non-media messages.
func MostCommonWords(records []parse.Record, stopWords map[string]bool, n int) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Kind != parse.KindMessage || strings.TrimSpace(r.Message) == MediaOmitted {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(r.Message)) {
			if stopWords[w] {
				continue
			}
			counts[w]++
		}
	}
	return topN(counts, n)
}

// Monthly counts messages per calendar month, oldest first, labelled
// "January-2024".
func Monthly(records []parse.Record) []Count {
	type ym struct{ year, month int }
	counts := make(map[ym]int)
	for _, r := range records {
		if f := r.Features; f != nil {
			counts[ym{f.Year, f.MonthNum}]++
		}
	}
	keys := make([]ym, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b ym) int {
		if c := cmp.Compare(a.year, b.year); c != 0 {
			return c
		}
		return cmp.Compare(a.month, b.month)
	})

	out := make([]Count, len(keys))
	for i, k := range keys {
		out[i] = Count{
			Key:   fmt.Sprintf("%s-%d", time.Month(k.month), k.year),
			Count: counts[k],
		}
	}
	return out
}

// Daily counts messages per date, oldest first.
func Daily(records []parse.Record) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Features != nil {
			counts[r.Features.OnlyDate]++
		}
	}
	out := make([]Count, 0, len(counts))
	for d, n := range counts {
		out = append(out, Count{Key: d, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

func WeekActivity(records []parse.Record) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Features != nil {
			counts[r.Features.DayName]++
		}
	}
	return topN(counts, 0)
}

func MonthActivity(records []parse.Record) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Features != nil {
			counts[r.Features.Month]++
		}
	}
	return topN(counts, 0)
}

// ActivityHeatmap counts messages per weekday (Monday first) and period.
func ActivityHeatmap(records []parse.Record) Heatmap {
	h := Heatmap{Periods: parse.PeriodLabels()}
	for d := time.Monday; d <= time.Saturday; d++ {
		h.Days = append(h.Days, d.String())
	}
	h.Days = append(h.Days, time.Sunday.String())

	h.Counts = make([][]int, len(h.Days))
	for i := range h.Counts {
		h.Counts[i] = make([]int, len(h.Periods))
	}
	for _, r := range records {
		if r.Features == nil {
			continue
		}
		day := slices.Index(h.Days, r.Features.DayName)
		if day < 0 {
			continue
		}
		h.Counts[day][r.Features.Hour]++
	}
	return h
}

// topN sorts by count descending then key; n <= 0 keeps everything.
func topN(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for k, c := range counts {
		out = append(out, Count{Key: k, Count: c})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// LoadStopWords reads one word per line; blank lines and # comments are
// skipped. An empty path yields an empty set.
func LoadStopWords(path string) (map[string]bool, error) {
	words := make(map[string]bool)
	if path == "" {
		return words, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stop words: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words[w] = true
	}
	return words, sc.Err()
}
