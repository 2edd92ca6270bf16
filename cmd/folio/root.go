package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "folio",
		Short:         "folio - a personal portfolio site built with Go, Echo, and templ",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = version
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+folio.DefaultConfigFile+")")

	load := func() (folio.SiteConfig, error) {
		return folio.LoadConfig(configPath)
	}

	cmd.AddCommand(
		newServeCmd(load),
		newProjectsCmd(load),
		newConfigCmd(load),
		newVersionCmd(),
	)
	return cmd
}

// configLoader defers reading the config until a subcommand runs, after
// flags are parsed.
type configLoader func() (folio.SiteConfig, error)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the folio version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", version)
		},
	}
}
