package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Zuo-Peng/wca/internal/parse"
	_ "modernc.org/sqlite"
)

var ErrTranscriptNotFound = errors.New("transcript not found")

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS transcripts (
    transcript_key TEXT PRIMARY KEY,
    file_path      TEXT NOT NULL,
    title          TEXT NOT NULL DEFAULT '',
    ingest_id      TEXT NOT NULL DEFAULT '',
    first_at       TEXT NOT NULL DEFAULT '',
    last_at        TEXT NOT NULL DEFAULT '',
    message_count  INTEGER NOT NULL DEFAULT 0,
    unparsed_count INTEGER NOT NULL DEFAULT 0,
    mtime          INTEGER NOT NULL DEFAULT 0,
    size           INTEGER NOT NULL DEFAULT 0
);

-- temporal columns are NULL when the timestamp could not be parsed
CREATE TABLE IF NOT EXISTS messages (
    transcript_key TEXT NOT NULL,
    msg_id         INTEGER NOT NULL,
    ts_text        TEXT NOT NULL,
    date           TEXT,
    sender         TEXT NOT NULL,
    kind           TEXT NOT NULL,
    message        TEXT NOT NULL,
    line_number    INTEGER NOT NULL DEFAULT 0,
    only_date      TEXT,
    year           INTEGER,
    month_num      INTEGER,
    month          TEXT,
    day            INTEGER,
    day_name       TEXT,
    hour           INTEGER,
    minute         INTEGER,
    am_pm          TEXT,
    period         TEXT,
    PRIMARY KEY (transcript_key, msg_id)
);

CREATE INDEX IF NOT EXISTS messages_sender ON messages(transcript_key, sender);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    message,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, message) VALUES (new.rowid, new.message);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, message) VALUES('delete', old.rowid, old.message);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, message) VALUES('delete', old.rowid, old.message);
    INSERT INTO messages_fts(rowid, message) VALUES (new.rowid, new.message);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion should be bumped whenever parsing logic changes
// to force a full re-index.
const schemaVersion = "1"

const timeFormat = time.RFC3339

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	// force re-index by resetting all transcript mtime/size to 0
	if _, err := d.db.Exec("UPDATE transcripts SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type TranscriptInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetTranscriptInfo(key string) (*TranscriptInfo, error) {
	var info TranscriptInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM transcripts WHERE transcript_key = ?", key,
	).Scan(&info.Mtime, &info.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllTranscriptKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT transcript_key FROM transcripts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteTranscript(key string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteTranscript(tx, key); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteTranscript(tx *sql.Tx, key string) error {
	if _, err := tx.Exec("DELETE FROM messages WHERE transcript_key = ?", key); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM transcripts WHERE transcript_key = ?", key)
	return err
}

func (d *DB) TranscriptCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// FTSCount is the number of rows in the full-text index.
func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

type TranscriptRow struct {
	TranscriptKey string `json:"transcript_key"`
	FilePath      string `json:"file_path"`
	Title         string `json:"title"`
	IngestID      string `json:"ingest_id"`
	FirstAt       string `json:"first_at"`
	LastAt        string `json:"last_at"`
	MessageCount  int    `json:"message_count"`
	UnparsedCount int    `json:"unparsed_count"`
}

const transcriptColumns = "transcript_key, file_path, title, ingest_id, first_at, last_at, message_count, unparsed_count"

func scanTranscript(row interface{ Scan(...any) error }) (TranscriptRow, error) {
	var t TranscriptRow
	err := row.Scan(&t.TranscriptKey, &t.FilePath, &t.Title, &t.IngestID, &t.FirstAt, &t.LastAt, &t.MessageCount, &t.UnparsedCount)
	return t, err
}

// GetTranscriptByKey returns nil, nil when the key is unknown.
func (d *DB) GetTranscriptByKey(key string) (*TranscriptRow, error) {
	t, err := scanTranscript(d.db.QueryRow(
		"SELECT "+transcriptColumns+" FROM transcripts WHERE transcript_key = ?", key,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (d *DB) ListTranscripts() ([]TranscriptRow, error) {
	rows, err := d.db.Query("SELECT " + transcriptColumns + " FROM transcripts ORDER BY last_at DESC, transcript_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TranscriptRow
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

type MessageRow struct {
	TranscriptKey string
	MsgID         int
	TsText        string
	Date          string // RFC3339, "" when unparsed
	Sender        string
	Kind          string
	Message       string
	LineNumber    int
}

const messageColumns = "transcript_key, msg_id, ts_text, date, sender, kind, message, line_number"

func scanMessages(rows *sql.Rows) ([]MessageRow, error) {
	var msgs []MessageRow
	for rows.Next() {
		var m MessageRow
		var date sql.NullString
		if err := rows.Scan(&m.TranscriptKey, &m.MsgID, &m.TsText, &date, &m.Sender, &m.Kind, &m.Message, &m.LineNumber); err != nil {
			return nil, err
		}
		m.Date = date.String
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (d *DB) GetMessages(key string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE transcript_key = ? ORDER BY msg_id", key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetMessagesWindow returns up to context messages either side of hitID.
// hitIdx is the position of the hit within the window (-1 if absent),
// startPos the number of messages before the window.
func (d *DB) GetMessagesWindow(key string, hitID, context int) (msgs []MessageRow, hitIdx, startPos, total int, err error) {
	err = d.db.QueryRow("SELECT COUNT(*) FROM messages WHERE transcript_key = ?", key).Scan(&total)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// msg_id is dense and 0-based, so it doubles as the position
	limit := total
	if hitID >= 0 && hitID < total {
		startPos = max(hitID-context, 0)
		endPos := min(hitID+context+1, total)
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE transcript_key = ? ORDER BY msg_id LIMIT ? OFFSET ?",
		key, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	msgs, err = scanMessages(rows)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	hitIdx = -1
	for i, m := range msgs {
		if m.MsgID == hitID {
			hitIdx = i
			break
		}
	}
	return msgs, hitIdx, startPos, total, nil
}

// LoadRecords rebuilds the parsed records of an indexed transcript.
func (d *DB) LoadRecords(key string) ([]parse.Record, error) {
	t, err := d.GetTranscriptByKey(key)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTranscriptNotFound, key)
	}

	msgs, err := d.GetMessages(key)
	if err != nil {
		return nil, err
	}

	records := make([]parse.Record, 0, len(msgs))
	for _, m := range msgs {
		rec := parse.Record{
			Index:         m.MsgID,
			TimestampText: m.TsText,
			Sender:        m.Sender,
			Message:       m.Message,
			Kind:          m.Kind,
			Line:          m.LineNumber,
		}
		if m.Date != "" {
			ts, err := time.Parse(timeFormat, m.Date)
			if err != nil {
				return nil, fmt.Errorf("message %d date: %w", m.MsgID, err)
			}
			rec.Date = &ts
			rec.Features = parse.ExtractFeatures(ts)
		}
		records = append(records, rec)
	}
	return records, nil
}
