package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/app"
	"github.com/yungbote/roadmap-backend/internal/catalog"
	types "github.com/yungbote/roadmap-backend/internal/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed-achievements",
	Short: "Upsert the achievement catalog",
	Long:  "Upserts the built-in achievement catalog, or the YAML file given with --file. Existing awards are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		log, _, dbService, err := app.Bootstrap(configPath(cmd))
		if err != nil {
			return err
		}
		defer log.Sync()
		defer dbService.Close()

		if err := app.SeedAchievements(cmd.Context(), log, dbService.DB(), items); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d achievements\n", len(items))
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "Path to a YAML achievement catalog (defaults to the built-in one)")
}

func loadCatalog(cmd *cobra.Command) ([]*types.Achievement, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return catalog.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return catalog.Parse(raw)
}
