package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/wca/internal/api"
	"github.com/Zuo-Peng/wca/internal/watch"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the index over a read-only JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			sw, err := a.stopWords()
			if err != nil {
				return err
			}

			a.refresh(db)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			srv := api.NewServer(addr, db, sw, a.logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Start(gctx) })
			if watchFlag {
				w := &watch.Watcher{
					Root:     a.cfg.ExportRoot,
					Logger:   a.logger,
					OnChange: func([]string) { a.refresh(db) },
				}
				g.Go(func() error { return w.Run(gctx) })
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default listen_addr from config)")
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Reindex when exports change")

	return cmd
}
