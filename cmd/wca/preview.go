package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wca/internal/render"
)

func previewCmd(a *app) *cobra.Command {
	var opts render.Options

	cmd := &cobra.Command{
		Use:   "preview <transcriptKey>",
		Short: "Preview a conversation with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderConversation(db, args[0], opts)
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.HitMsgID, "hit", -1, "Message ID to highlight")
	cmd.Flags().IntVar(&opts.Context, "context", 10, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().StringVar(&opts.Query, "query", "", "Search query for keyword highlighting")

	return cmd
}
