package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CheickOuedraogo/tuteur-backend/internal/app"
	"github.com/CheickOuedraogo/tuteur-backend/internal/audio"
	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

var generateAudioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Narrate topics, questions and feedback that have no audio yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		topicID, _ := cmd.Flags().GetInt64("topic")

		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		narrator, err := app.NewNarrator(cmd.Context(), e.cfg, e.log)
		if err != nil {
			return err
		}
		defer narrator.Close()

		report, err := service.NewNarrationService(e.db, narrator.Service, e.log).FillMissing(cmd.Context(), topicID)
		if err != nil {
			return err
		}
		fmt.Printf("%d clip(s) for %d topic(s) and %d exercise(s), %d failed\n",
			report.Clips, report.Topics, report.Exercises, report.Failed)
		return nil
	},
}

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Maintain the local media directory",
}

var mediaPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete narration files no longer referenced by the curriculum",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if e.cfg.AudioStore != "" && e.cfg.AudioStore != "local" {
			return fmt.Errorf("prune only applies to the local audio store, not %q", e.cfg.AudioStore)
		}
		store, err := audio.NewLocalStore(e.cfg.MediaRoot, e.cfg.MediaURL)
		if err != nil {
			return err
		}

		orphans, err := service.NewNarrationService(e.db, nil, e.log).PruneOrphans(cmd.Context(), store, dryRun)
		if err != nil {
			return err
		}
		for _, name := range orphans {
			fmt.Println(name)
		}
		verb := "removed"
		if dryRun {
			verb = "would be removed"
		}
		fmt.Printf("%d file(s) %s\n", len(orphans), verb)
		return nil
	},
}

func init() {
	generateAudioCmd.Flags().Int64("topic", 0, "Topic ID (default: every topic)")
	generateCmd.AddCommand(generateAudioCmd)

	mediaPruneCmd.Flags().Bool("dry-run", false, "List orphan files without deleting them")
	mediaCmd.AddCommand(mediaPruneCmd)
}
