package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Zuo-Peng/wca/internal/index"
)

type Result struct {
	TranscriptKey string  `json:"transcript_key"`
	MsgID         int     `json:"msg_id"`
	Title         string  `json:"title"`
	Date          string  `json:"date"`
	Sender        string  `json:"sender"`
	Kind          string  `json:"kind"`
	Snippet       string  `json:"snippet"`
	Rank          float64 `json:"rank"`
}

type Options struct {
	Query      string
	Transcript string // "" = all
	Sender     string // "" = all
	Kind       string // "" = all, "message", "notification"
	Since      string // "" = no filter, e.g. "2024-01-01"
	Limit      int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
// Matching is done on a rune-for-rune lowered copy so positions line up with
// text even where lowering changes a character's byte length.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}
	q := []rune(query)
	for i, r := range q {
		q[i] = unicode.ToLower(r)
	}

	runePos := -1
	if idx := strings.Index(string(lower), string(q)); idx >= 0 && len(q) > 0 {
		runePos = utf8.RuneCountInString(string(lower)[:idx])
	}
	if runePos < 0 {
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	hitEnd := min(runePos+len(q), len(runes))
	start := max(runePos-contextChars, 0)
	end := min(hitEnd+contextChars, len(runes))

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(string(runes[start:runePos]))
	b.WriteString(">>>" + string(runes[runePos:hitEnd]) + "<<<")
	b.WriteString(string(runes[hitEnd:end]))
	if end < len(runes) {
		b.WriteString("...")
	}
	return b.String()
}

// Search finds messages matching opts.Query, best match first. Queries with
// CJK text fall back to substring matching, which FTS5's unicode61
// tokenizer cannot do.
func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if containsCJK(opts.Query) {
		return searchLike(db, opts)
	}
	return searchFTS(db, opts)
}

func filters(opts Options) ([]string, []any) {
	var conditions []string
	var args []any
	if opts.Transcript != "" {
		conditions = append(conditions, "m.transcript_key = ?")
		args = append(args, opts.Transcript)
	}
	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if opts.Kind != "" {
		conditions = append(conditions, "m.kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.only_date >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []any{opts.Query}
	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.transcript_key,
			m.msg_id,
			t.title,
			COALESCE(m.date, ''),
			m.sender,
			m.kind,
			snippet(messages_fts, 0, '>>>', '<<<', '...', 24) AS snip,
			bm25(messages_fts) AS rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN transcripts t ON m.transcript_key = t.transcript_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"m.message LIKE ?"}
	args := []any{"%" + opts.Query + "%"}
	fc, fa := filters(opts)
	conditions = append(conditions, fc...)
	args = append(args, fa...)

	query := fmt.Sprintf(`
		SELECT
			m.transcript_key,
			m.msg_id,
			t.title,
			COALESCE(m.date, ''),
			m.sender,
			m.kind,
			m.message,
			0
		FROM messages m
		JOIN transcripts t ON m.transcript_key = t.transcript_key
		WHERE %s
		ORDER BY m.date DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Snippet = makeSnippet(results[i].Snippet, opts.Query, 30)
	}
	return results, nil
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.TranscriptKey, &r.MsgID, &r.Title, &r.Date,
			&r.Sender, &r.Kind, &r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
