package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "wca",
		Short:         "WhatsApp chat analyzer - parse, index, search and summarise exported chats",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", "", "Config file (default $WCA_CONFIG or ~/.config/wca/config.toml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (debug/info/warn/error)")

	rootCmd.AddCommand(parseCmd(a))
	rootCmd.AddCommand(indexCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(previewCmd(a))
	rootCmd.AddCommand(openCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(doctorCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
