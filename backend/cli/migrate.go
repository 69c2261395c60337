package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ibam/backend/store"
)

func newMigrateCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := env.OpenDB(env.Cfg, env.Log)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := store.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newSeedCmd(env *Env) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert catalogue sessions missing from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := env.OpenDB(env.Cfg, env.Log)
			if err != nil {
				return err
			}
			defer closeDB(db)

			if migrate {
				if err := store.Migrate(db); err != nil {
					return err
				}
			}
			n, err := store.New(db).SeedSessions(cmd.Context(), env.Curriculum)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d sessions\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrations first")
	return cmd
}
