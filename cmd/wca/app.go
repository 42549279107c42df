package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/wca/internal/config"
	"github.com/Zuo-Peng/wca/internal/index"
	"github.com/Zuo-Peng/wca/internal/logging"
	"github.com/Zuo-Peng/wca/internal/parse"
	"github.com/Zuo-Peng/wca/internal/stats"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgPath  string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) load() error {
	var err error
	if a.cfgPath != "" {
		a.cfg, err = config.LoadFile(a.cfgPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := a.cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.logger = logging.Setup(os.Stderr, level)
	return nil
}

func (a *app) parseOptions() parse.Options {
	return parse.Options{
		Location:       a.cfg.Location(),
		MonthFirst:     a.cfg.MonthFirstFallback,
		PreserveColons: a.cfg.PreserveColons,
		Logger:         a.logger,
	}
}

func (a *app) openDB() (*index.DB, error) {
	db, err := index.OpenDB(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func (a *app) indexer(db *index.DB) *index.Indexer {
	return &index.Indexer{
		DB:      db,
		Root:    a.cfg.ExportRoot,
		Options: a.parseOptions(),
		Logger:  a.logger,
	}
}

// refresh brings the index up to date before a read, logging instead of
// failing so a stale index is still usable.
func (a *app) refresh(db *index.DB) {
	if _, err := a.indexer(db).IndexAll(); err != nil {
		a.logger.Warn("auto index failed", "error", err)
	}
}

func (a *app) stopWords() (map[string]bool, error) {
	return stats.LoadStopWords(a.cfg.StopWordsFile)
}
