package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, _, dbService, err := app.Bootstrap(configPath(cmd))
		if err != nil {
			return err
		}
		defer log.Sync()
		defer dbService.Close()
		log.Info("Migrations applied", "driver", dbService.Driver())
		return nil
	},
}
