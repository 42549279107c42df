package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wca/internal/export"
	"github.com/Zuo-Peng/wca/internal/parse"
)

func parseCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an exported chat and print one row per message",
		Long: `Parse an exported chat without touching the index. Each message becomes a
row with its sender, text and date parts (year, month, day, hour, period...).
Rows whose timestamp could not be read keep empty date columns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			res, err := parse.ParseFile(path, filepath.Dir(path), a.parseOptions())
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			return export.Write(os.Stdout, format, res.Records)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tsv", "Output format (tsv/csv/json/yaml)")

	return cmd
}
