package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wca/internal/tui"
)

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Browse indexed chats, most recent first",
		Long:  `Opens a TUI panel of every indexed chat. Type to filter by title. When stdout is not a terminal, prints a table instead.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			a.refresh(db)

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.RunTranscripts(db)
			}

			ts, err := db.ListTranscripts()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tTITLE\tMESSAGES\tUNPARSED\tLAST")
			for _, t := range ts {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", t.TranscriptKey, t.Title, t.MessageCount, t.UnparsedCount, t.LastAt)
			}
			return tw.Flush()
		},
	}
}
