package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			applied, err := store.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			version, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}

			if applied == 0 {
				fmt.Printf("Database schema is up to date (version %d)\n", version)
				return nil
			}
			fmt.Printf("Applied %d migration(s), schema now at version %d\n", applied, version)
			return nil
		},
	}
}
