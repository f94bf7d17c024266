package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import a JSON snapshot of learner data",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the database to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}
		if dir := filepath.Dir(output); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}

		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create backup file: %w", err)
		}
		defer f.Close()

		if err := service.NewBackupService(e.db, e.log).ExportToWriter(cmd.Context(), f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		info, err := f.Stat()
		if err != nil {
			return err
		}
		fmt.Printf("Export complete: %s (%.2f MB)\n", output, float64(info.Size())/1024/1024)
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON snapshot into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open backup file: %w", err)
		}
		defer f.Close()

		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := service.NewBackupService(e.db, e.log).ImportFromReader(cmd.Context(), f); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Println("Import complete.")
		return nil
	},
}

func init() {
	backupExportCmd.Flags().StringP("output", "o", "", "Output file (default backup_YYYYMMDD_HHMMSS.json)")
	backupImportCmd.Flags().StringP("input", "i", "", "Backup file to import")
	_ = backupImportCmd.MarkFlagRequired("input")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
}
