package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wca/internal/open"
)

func openCmd(a *app) *cobra.Command {
	var hitMsgID int

	cmd := &cobra.Command{
		Use:   "open <transcriptKey>",
		Short: "Open the exported chat in $EDITOR at the hit line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			return open.Message(db, args[0], hitMsgID)
		},
	}

	cmd.Flags().IntVar(&hitMsgID, "hit", -1, "Message ID to jump to")

	return cmd
}
