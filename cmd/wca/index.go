package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wca/internal/watch"
)

func indexCmd(a *app) *cobra.Command {
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan and index exported chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ix := a.indexer(db)
			fmt.Fprintf(os.Stderr, "Scanning %s...\n", ix.Root)

			stats, err := ix.IndexAll()
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)

			if !watchFlag {
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &watch.Watcher{
				Root:   ix.Root,
				Logger: a.logger,
				OnChange: func(paths []string) {
					a.logger.Info("exports changed", "files", len(paths))
					stats, err := ix.IndexAll()
					if err != nil {
						a.logger.Error("reindex failed", "error", err)
						return
					}
					fmt.Fprintf(os.Stderr, "Reindexed. %s\n", stats)
				},
			}
			return w.Run(ctx)
		},
	}

	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Keep running and reindex when exports change")

	return cmd
}
