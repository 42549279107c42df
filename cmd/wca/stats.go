package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wca/internal/parse"
	"github.com/Zuo-Peng/wca/internal/render"
	"github.com/Zuo-Peng/wca/internal/stats"
)

func statsCmd(a *app) *cobra.Command {
	var user string
	var asJSON, listUsers bool

	cmd := &cobra.Command{
		Use:   "stats <file|transcriptKey>",
		Short: "Summarise a chat: activity, busiest senders, common words",
		Long: `Build an activity report for one chat. The argument is either an export
file on disk, which is parsed directly, or the key of an indexed transcript.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, records, err := a.loadRecords(args[0])
			if err != nil {
				return err
			}

			if listUsers {
				fmt.Println(stats.Overall)
				for _, s := range stats.Senders(records) {
					fmt.Println(s)
				}
				return nil
			}

			sw, err := a.stopWords()
			if err != nil {
				return err
			}
			rep := stats.Build(records, user, sw)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			fmt.Print(render.RenderReport(title, rep))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", stats.Overall, "Sender to report on")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&listUsers, "users", false, "List the senders that can be passed to --user")

	return cmd
}

// loadRecords reads target as an export file when it exists on disk and as
// a transcript key otherwise.
func (a *app) loadRecords(target string) (string, []parse.Record, error) {
	if fi, err := os.Stat(target); err == nil && !fi.IsDir() {
		res, err := parse.ParseFile(target, filepath.Dir(target), a.parseOptions())
		if err != nil {
			return "", nil, fmt.Errorf("parse %s: %w", target, err)
		}
		return res.Meta.Title, res.Records, nil
	}

	db, err := a.openDB()
	if err != nil {
		return "", nil, err
	}
	defer db.Close()

	t, err := db.GetTranscriptByKey(target)
	if err != nil {
		return "", nil, err
	}
	title := target
	if t != nil {
		title = t.Title
	}
	records, err := db.LoadRecords(target)
	if err != nil {
		return "", nil, err
	}
	return title, records, nil
}
