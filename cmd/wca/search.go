package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wca/internal/parse"
	"github.com/Zuo-Peng/wca/internal/search"
	"github.com/Zuo-Peng/wca/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorMagenta = "\033[2;35m"
	sColorDim     = "\033[2m"
)

func colorizeSender(sender, kind string) string {
	if kind == parse.KindNotification {
		return sColorMagenta + sender + sColorReset
	}
	return sColorBlue + sender + sColorReset
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func flatten(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

func searchCmd(a *app) *cobra.Command {
	var opts search.Options

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed messages",
		Long: `Search indexed messages using FTS5. Output is TSV for fzf integration:
  transcriptKey, msgId, date, sender, title, snippet

Recommended shell function (add to .zshrc):
  wcaf() {
    wca search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'wca preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(wca open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			a.refresh(db)

			// interactive when stdout is a terminal, TSV for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				date := r.Date
				if date == "" {
					date = "-"
				}
				// first two fields stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\n",
					r.TranscriptKey,
					r.MsgID,
					sColorDim, date, sColorReset,
					colorizeSender(flatten(r.Sender), r.Kind),
					flatten(r.Title),
					colorizeSnippet(flatten(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Sender, "sender", "", "Only messages from this sender")
	cmd.Flags().StringVar(&opts.Transcript, "transcript", "", "Only this transcript key")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Filter by kind (message/notification)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Only messages on or after date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "Max results")

	return cmd
}
