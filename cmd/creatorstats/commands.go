package main

import (
	"creatorstats/internal/di"
	"creatorstats/internal/structures"

	"github.com/spf13/cobra"
)

func newServeCommand(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily collection scheduler",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(flags)
		},
	}
}

func runServe(flags *structures.CliFlags) error {
	app, cleanup, err := di.InitApp(flags)
	if err != nil {
		return err
	}
	defer cleanup()
	return app.Run()
}

func newCollectCommand(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Record today's stats for every connected platform and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console, cleanup, err := di.InitConsole(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			return console.Collect(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newStatusCommand(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the API call budget of every platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console, cleanup, err := di.InitConsole(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			return console.Status(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
