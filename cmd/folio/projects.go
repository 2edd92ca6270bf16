package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/projects"
)

func newProjectsCmd(load configLoader) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects the site would serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			repo, closer, err := folio.OpenProjects(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			list, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeProjects(cmd, list, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	cmd.AddCommand(newProjectsSeedCmd(load))
	return cmd
}

func newProjectsSeedCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the projects database and seed it from the projects file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Projects.Database == "" {
				return fmt.Errorf("no projects database configured (set PROJECTS_DB or [projects] database)")
			}
			var seed []projects.Project
			if cfg.Projects.File != "" {
				m, err := projects.LoadFile(cfg.Projects.File)
				if err != nil {
					return err
				}
				if seed, err = m.List(cmd.Context()); err != nil {
					return err
				}
			} else {
				seed = projects.Default()
			}

			store, err := projects.NewStore(cfg.Projects.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			seeded, err := store.Seed(cmd.Context(), seed)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has projects, nothing to do\n", cfg.Projects.Database)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d projects into %s\n", len(seed), cfg.Projects.Database)
			return nil
		},
	}
}

func writeProjects(cmd *cobra.Command, list []projects.Project, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "yaml":
		data, err := projects.MarshalYAML(list)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "table", "":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSLUG\tCATEGORY\tTECHNOLOGIES")
		for _, p := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Slug, p.Category, strings.Join(p.Technologies, ", "))
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format: %s", format)
}
