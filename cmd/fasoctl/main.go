// Command fasoctl runs maintenance tasks against the tutor database:
// migrations, JSON backups, spreadsheet reports, content generation and
// narration, and media cleanup.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CheickOuedraogo/tuteur-backend/internal/app"
	"github.com/CheickOuedraogo/tuteur-backend/internal/config"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "fasoctl",
	Short:         "FASO Tuteur maintenance tool",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite database (overrides DB_PATH)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(mediaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is the configuration, logger and migrated database of one command run.
type env struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB
}

func (e *env) Close() {
	e.db.Close()
	e.log.Sync()
}

func openEnv(ctx context.Context, cmd *cobra.Command) (*env, error) {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DatabasePath = p
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := app.OpenDatabase(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}
