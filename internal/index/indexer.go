package index

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Zuo-Peng/wca/internal/parse"
	"github.com/Zuo-Peng/wca/internal/scan"
	"github.com/google/uuid"
)

type Stats struct {
	IngestID string
	Scanned  int
	Updated  int
	Skipped  int
	Pruned   int
	Errors   int
	Unparsed int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d unparsed=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors, s.Unparsed)
}

// Indexer keeps the database in step with the exports under Root.
type Indexer struct {
	DB      *DB
	Root    string
	Options parse.Options
	Logger  *slog.Logger
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger == nil {
		return slog.Default()
	}
	return ix.Logger
}

// IndexAll parses new or changed exports and prunes transcripts whose file
// is gone. Per-file failures are counted and logged, not returned.
func (ix *Indexer) IndexAll() (Stats, error) {
	stats := Stats{IngestID: uuid.NewString()}
	log := ix.logger().With("ingest_id", stats.IngestID)

	files, err := scan.ScanRoot(ix.Root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := parse.TranscriptKey(fi.Path, ix.Root)
		seenKeys[key] = struct{}{}

		needs, err := ix.needsUpdate(key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			log.Warn("check transcript", "file", fi.Path, "error", err)
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		result, err := ix.IndexFile(fi.Path, stats.IngestID)
		if err != nil {
			stats.Errors++
			log.Warn("index transcript", "file", fi.Path, "error", err)
			continue
		}
		stats.Updated++
		stats.Unparsed += result.Unparsed
	}

	pruned, err := ix.pruneTranscripts(seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	log.Info("index complete", "scanned", stats.Scanned, "updated", stats.Updated, "pruned", stats.Pruned)
	return stats, nil
}

// IndexFile parses one export and replaces its stored rows.
func (ix *Indexer) IndexFile(path, ingestID string) (*parse.FileResult, error) {
	opts := ix.Options
	if opts.Logger == nil {
		opts.Logger = ix.logger()
	}
	result, err := parse.ParseFile(path, ix.Root, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if ingestID == "" {
		ingestID = uuid.NewString()
	}
	if err := ix.DB.storeTranscript(result, ingestID); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return result, nil
}

func (ix *Indexer) needsUpdate(key string, mtime, size int64) (bool, error) {
	info, err := ix.DB.GetTranscriptInfo(key)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new transcript
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func (ix *Indexer) pruneTranscripts(seenKeys map[string]struct{}) (int, error) {
	allKeys, err := ix.DB.AllTranscriptKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := ix.DB.DeleteTranscript(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}

func (d *DB) storeTranscript(result *parse.FileResult, ingestID string) error {
	meta := result.Meta
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// the old rows go in the same transaction so a failed insert keeps them
	if err := deleteTranscript(tx, meta.TranscriptKey); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO transcripts (transcript_key, file_path, title, ingest_id, first_at, last_at, message_count, unparsed_count, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.TranscriptKey,
		meta.FilePath,
		meta.Title,
		ingestID,
		formatTime(meta.FirstAt),
		formatTime(meta.LastAt),
		len(result.Records),
		result.Unparsed,
		meta.Mtime.Unix(),
		meta.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (transcript_key, msg_id, ts_text, date, sender, kind, message, line_number,
		     only_date, year, month_num, month, day, day_name, hour, minute, am_pm, period)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range result.Records {
		args := []any{
			meta.TranscriptKey, r.Index, r.TimestampText, nil,
			r.Sender, r.Kind, r.Message, r.Line,
			nil, nil, nil, nil, nil, nil, nil, nil, nil, nil,
		}
		if r.Date != nil && r.Features != nil {
			f := r.Features
			args[3] = r.Date.Format(timeFormat)
			copy(args[8:], []any{f.OnlyDate, f.Year, f.MonthNum, f.Month, f.Day, f.DayName, f.Hour, f.Minute, f.AmPm, f.Period})
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}
