package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		fmt.Printf("Database %s is up to date.\n", e.db.Dialect.Name())
		return nil
	},
}
