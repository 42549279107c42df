package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/wca/internal/index"
	"github.com/Zuo-Peng/wca/internal/parse"
)

const (
	colorReset   = "\033[0m"
	colorSender  = "\033[1;34m" // bold blue
	colorNotice  = "\033[2;35m" // dim magenta for group notifications
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	HitMsgID int
	Context  int    // messages before/after hit to show
	Width    int    // wrap width (0 = no wrap)
	Query    string // search query for keyword highlighting
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	for _, term := range strings.Fields(query) {
		if fts5Operators[term] {
			continue
		}
		term = strings.Trim(term, `"*`)
		if term == "" {
			continue
		}
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			replacement := colorBoldRed + text[pos:pos+len(term)] + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)
		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}
		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}
	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// RenderConversation renders the messages around opts.HitMsgID and returns
// the text plus the 0-based line of the hit header (-1 if no hit).
func RenderConversation(db *index.DB, key string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	t, err := db.GetTranscriptByKey(key)
	if err != nil {
		return "", -1, fmt.Errorf("get transcript: %w", err)
	}
	if t == nil {
		return "", -1, fmt.Errorf("%w: %s", index.ErrTranscriptNotFound, key)
	}

	msgs, hitIdx, startPos, total, err := db.GetMessagesWindow(key, opts.HitMsgID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}
	if total == 0 {
		return "(empty transcript)", -1, nil
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s [%s] %d messages ---%s", colorDim, t.Title, key, t.MessageCount, colorReset))
	if startPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, startPos, colorReset))
	}

	for i, m := range msgs {
		label, color := m.Sender, colorSender
		if m.Kind == parse.KindNotification {
			label, color = "*", colorNotice
		}
		ts := m.TsText
		if m.Date == "" {
			ts += "(unparsed)"
		}

		if i == hitIdx {
			hitLine = lineCount
			writeLine(fmt.Sprintf("%s>> %s > %s<<%s", colorHit, label, ts, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s%s %s%s%s", color, label, colorReset, colorDim, ts, colorReset))
		}

		text := m.Message
		if m.Kind == parse.KindNotification {
			text = colorDim + text + colorReset
		}
		text = indentLines(highlightKeywords(text, opts.Query), "  ")
		for _, tl := range strings.Split(text, "\n") {
			writeLine(tl)
		}
	}

	if after := total - startPos - len(msgs); after > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, after, colorReset))
	}

	return b.String(), hitLine, nil
}
