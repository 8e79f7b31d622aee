package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"task-manager/internal/seed"
)

func seedCmd(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default statuses and labels",
		Long: `Migrate the database and create the rows described by the seed file.

The embedded defaults are used unless SEED_FILE points at a YAML document.
Rows whose name, slug or email already exist are skipped, so the command
can be run any number of times.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()

			data, err := seed.Load(a.cfg.SeedFile)
			if err != nil {
				return err
			}

			res, err := seed.Apply(cmd.Context(), data, seed.Targets{
				Statuses: a.statuses,
				Labels:   a.labels,
				Users:    a.users,
			}, a.log)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seed applied: %d created, %d already present.\n", res.Created, res.Skipped)
			return nil
		},
	}
}
