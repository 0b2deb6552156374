package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ecomrevenue/internal/app"
)

type setupFunc func(cmd *cobra.Command) (*app.App, error)

func newLoadCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Validate the source files and replace the store tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			_, err = a.Load(cmd.Context())
			return err
		},
	}
}

func newReportCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Compute the customer revenue report from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			return a.Report(cmd.Context())
		},
	}
}

func newRunCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load, then report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

func newServeCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve table counts, the report and the load history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context())
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the registered entities and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.PrintSchema(cmd.OutOrStdout())
			return nil
		},
	}
}
