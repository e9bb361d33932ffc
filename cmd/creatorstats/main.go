package main

import (
	"creatorstats/internal/structures"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	flags := &structures.CliFlags{}

	root := cobra.Command{
		Use:          "creatorstats",
		Short:        "creatorstats serves follower and view statistics for YouTube, Instagram and Threads.",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(flags)
		},
	}
	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "./config.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "enable debug logging")

	root.AddCommand(newServeCommand(flags))
	root.AddCommand(newCollectCommand(flags))
	root.AddCommand(newStatusCommand(flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
