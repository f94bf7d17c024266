package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CheickOuedraogo/tuteur-backend/internal/app"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate curriculum content and narration",
}

func newGenerationService(cmd *cobra.Command, e *env) (*service.GenerationService, error) {
	gateway, err := app.NewGateway(cmd.Context(), e.cfg, e.log)
	if err != nil {
		return nil, err
	}
	if !gateway.Configured() {
		return nil, fmt.Errorf("AI provider %q has no API key", e.cfg.AIProvider)
	}
	guests := service.NewGuestService(e.db, e.cfg.GuestTTL, e.log)
	return service.NewGenerationService(e.db, guests, gateway, app.AIPolicy(e.cfg), e.log), nil
}

func gradeFlag(cmd *cobra.Command) (string, error) {
	classe, _ := cmd.Flags().GetString("classe")
	classe = curriculum.NormalizeGrade(classe)
	if !curriculum.IsValidGrade(classe) {
		return "", fmt.Errorf("unknown grade %q", classe)
	}
	return classe, nil
}

var generateTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Generate curriculum topics for a subject and grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		matiere, _ := cmd.Flags().GetString("matiere")
		count, _ := cmd.Flags().GetInt("count")
		classe, err := gradeFlag(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		gen, err := newGenerationService(cmd, e)
		if err != nil {
			return err
		}

		topics, err := gen.GenerateTopics(cmd.Context(), matiere, classe, count)
		if err != nil {
			return err
		}
		for _, t := range topics {
			fmt.Printf("%4d  %s\n", t.ID, t.Titre)
		}
		fmt.Printf("%d topic(s) created for %s %s\n", len(topics), curriculum.SubjectLabel(matiere), curriculum.GradeLabel(classe))
		return nil
	},
}

var generateExercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "Generate exercises for one topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		topicID, _ := cmd.Flags().GetInt64("topic")
		count, _ := cmd.Flags().GetInt("count")

		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		topic, err := repository.NewTopicRepository(e.db).GetByID(cmd.Context(), topicID)
		if err != nil {
			return err
		}
		if topic == nil {
			return fmt.Errorf("topic %d not found", topicID)
		}
		gen, err := newGenerationService(cmd, e)
		if err != nil {
			return err
		}

		exercises, err := gen.GenerateExercises(cmd.Context(), topic, topic.Classe, count)
		if err != nil {
			return err
		}
		fmt.Printf("%d exercise(s) created for %q\n", len(exercises), topic.Titre)
		return nil
	},
}

var generateEssentialsCmd = &cobra.Command{
	Use:   "essentials",
	Short: "Generate the essential questions of a subject and grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		matiere, _ := cmd.Flags().GetString("matiere")
		count, _ := cmd.Flags().GetInt("count")
		classe, err := gradeFlag(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		gen, err := newGenerationService(cmd, e)
		if err != nil {
			return err
		}

		exercises, err := gen.GenerateEssentials(cmd.Context(), matiere, classe, count)
		if err != nil {
			return err
		}
		fmt.Printf("%d essential question(s) created for %s %s\n", len(exercises), curriculum.SubjectLabel(matiere), curriculum.GradeLabel(classe))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{generateTopicsCmd, generateEssentialsCmd} {
		c.Flags().String("matiere", "", "Subject code, e.g. mathematiques")
		c.Flags().String("classe", "", "Grade code, e.g. ce1")
		_ = c.MarkFlagRequired("matiere")
		_ = c.MarkFlagRequired("classe")
	}
	generateTopicsCmd.Flags().Int("count", 8, "Number of topics to request")
	generateEssentialsCmd.Flags().Int("count", 10, "Number of questions to request")

	generateExercisesCmd.Flags().Int64("topic", 0, "Topic ID")
	generateExercisesCmd.Flags().Int("count", service.DefaultGeneratedExercises, "Number of exercises to request")
	_ = generateExercisesCmd.MarkFlagRequired("topic")

	generateCmd.AddCommand(generateTopicsCmd)
	generateCmd.AddCommand(generateExercisesCmd)
	generateCmd.AddCommand(generateEssentialsCmd)
}
