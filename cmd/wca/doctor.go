package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wca/internal/config"
	"github.com/Zuo-Peng/wca/internal/scan"
)

func doctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, export root, DB and FTS5",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg

			fmt.Println("=== Config ===")
			cfgPath := a.cfgPath
			if cfgPath == "" {
				cfgPath, _ = config.Path()
			}
			if _, err := os.Stat(cfgPath); err != nil {
				fmt.Printf("  File: %s (not found, using defaults)\n", cfgPath)
			} else {
				fmt.Printf("  File: %s (OK)\n", cfgPath)
			}
			fmt.Printf("  Timezone: %s\n", cfg.Location())
			fmt.Printf("  Month-first fallback: %t\n", cfg.MonthFirstFallback)
			fmt.Printf("  Preserve colons: %t\n", cfg.PreserveColons)

			fmt.Println("\n=== Export root ===")
			checkDir("Exports", cfg.ExportRoot)
			files, err := scan.ScanRoot(cfg.ExportRoot)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Export files: %d\n", len(files))
			}

			if cfg.StopWordsFile != "" {
				if sw, err := a.stopWords(); err != nil {
					fmt.Printf("  Stop words: %v\n", err)
				} else {
					fmt.Printf("  Stop words: %d\n", len(sw))
				}
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'wca index' first)")
				return nil
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			transcripts, err := db.TranscriptCount()
			if err != nil {
				return fmt.Errorf("count transcripts: %w", err)
			}
			messages, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			fmt.Printf("  Transcripts: %d\n", transcripts)
			fmt.Printf("  Messages:    %d\n", messages)

			fmt.Println("\n=== FTS5 ===")
			ftsCount, err := db.FTSCount()
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == messages {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", messages, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
