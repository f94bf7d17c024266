package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build spreadsheet reports",
}

var reportProgressionsCmd = &cobra.Command{
	Use:   "progressions",
	Short: "Write learner progressions to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		classe, _ := cmd.Flags().GetString("classe")

		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := service.NewReportService(e.db, e.log).WriteProgressionReport(cmd.Context(), f, classe); err != nil {
			f.Close()
			return fmt.Errorf("write report: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", output)
		return nil
	},
}

func init() {
	reportProgressionsCmd.Flags().StringP("output", "o", "progressions.xlsx", "Output workbook")
	reportProgressionsCmd.Flags().String("classe", "", "Only include learners of this grade")

	reportCmd.AddCommand(reportProgressionsCmd)
}
