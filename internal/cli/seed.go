package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lingvolab/lingvo/internal/app/catalog"
	"github.com/lingvolab/lingvo/internal/daemon"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter curriculum into the database",
	Long: `Upsert the starter courses, modules, and lessons. Safe to re-run:
existing lessons are refreshed, admin-created content is never deleted.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	dir := cfg.Database.Dir
	if dir == "" {
		dir = daemon.LingvoHome()
	}

	db, err := sqlite.Open(dir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := catalog.Seed(db, time.Now()); err != nil {
		return err
	}
	fmt.Println("Curriculum seeded.")
	return nil
}
