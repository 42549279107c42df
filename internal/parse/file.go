package parse

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type TranscriptMeta struct {
	TranscriptKey string
	FilePath      string
	Title         string
	FirstAt       time.Time
	LastAt        time.Time
	Mtime         time.Time
	Size          int64
}

type FileResult struct {
	Meta TranscriptMeta
	*Result
}

// ParseFile reads one exported transcript. The key is the path relative to
// root without its extension, prefixed with "chat:".
func ParseFile(filePath, root string, opts Options) (*FileResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	res, err := Preprocess(string(data), withFile(opts, filePath))
	if err != nil {
		return nil, err
	}

	meta := TranscriptMeta{
		TranscriptKey: TranscriptKey(filePath, root),
		FilePath:      filePath,
		Title:         titleFromPath(filePath),
		Mtime:         info.ModTime(),
		Size:          info.Size(),
	}
	for _, r := range res.Records {
		if r.Date == nil {
			continue
		}
		if meta.FirstAt.IsZero() || r.Date.Before(meta.FirstAt) {
			meta.FirstAt = *r.Date
		}
		if r.Date.After(meta.LastAt) {
			meta.LastAt = *r.Date
		}
	}

	return &FileResult{Meta: meta, Result: res}, nil
}

func TranscriptKey(filePath, root string) string {
	rel := filePath
	if root != "" {
		if r, err := filepath.Rel(root, filePath); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return "chat:" + strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
}

// titleFromPath turns "WhatsApp Chat with Family.txt" into "Family".
func titleFromPath(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	for _, prefix := range []string{"WhatsApp Chat with ", "WhatsApp Chat - "} {
		if strings.HasPrefix(base, prefix) {
			return strings.TrimPrefix(base, prefix)
		}
	}
	return base
}

func withFile(opts Options, filePath string) Options {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger.With("file", filePath)
	return opts
}
