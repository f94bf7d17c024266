package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

const (
	sheetProgressions = "Progressions"
	sheetLearners     = "Élèves"
)

// ProgressionRow is one learner/topic line of the progression report.
type ProgressionRow struct {
	Username            string
	Classe              string
	Matiere             string
	Topic               string
	ScoreTotal          int
	ExercicesReussis    int
	ExercicesTotal      int
	ErreursConsecutives int
	DerniereActivite    time.Time
}

// TauxReussite returns the success rate as a percentage.
func (r ProgressionRow) TauxReussite() float64 {
	if r.ExercicesTotal == 0 {
		return 0
	}
	return 100 * float64(r.ExercicesReussis) / float64(r.ExercicesTotal)
}

// LearnerRow summarises one registered learner.
type LearnerRow struct {
	Username string
	Email    string
	Classe   string
	Points   int
	Reponses int
}

// ReportService builds spreadsheet reports for teachers and operators.
type ReportService struct {
	db  *database.DB
	log *logger.Logger
}

func NewReportService(db *database.DB, log *logger.Logger) *ReportService {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportService{db: db, log: log}
}

// Progressions lists registered learners' progressions, optionally for one grade.
func (s *ReportService) Progressions(ctx context.Context, classe string) ([]ProgressionRow, error) {
	query := `
		SELECT u.username, p.classe, m.nom, t.titre, pr.score_total, pr.exercices_reussis, pr.exercices_total,
			pr.erreurs_consecutives, pr.date_derniere_activite
		FROM progressions pr
		JOIN profils p ON p.id = pr.profil_id
		JOIN users u ON u.id = p.user_id
		JOIN topics t ON t.id = pr.topic_id
		JOIN matieres m ON m.id = t.matiere_id
		WHERE u.is_guest = ?`
	args := []interface{}{false}
	if classe != "" {
		query += " AND p.classe = ?"
		args = append(args, curriculum.NormalizeGrade(classe))
	}
	query += " ORDER BY p.classe, u.username, m.ordre, t.ordre"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progressions: %w", err)
	}
	defer rows.Close()

	var out []ProgressionRow
	for rows.Next() {
		var r ProgressionRow
		if err := rows.Scan(&r.Username, &r.Classe, &r.Matiere, &r.Topic, &r.ScoreTotal, &r.ExercicesReussis,
			&r.ExercicesTotal, &r.ErreursConsecutives, &r.DerniereActivite); err != nil {
			return nil, fmt.Errorf("failed to scan progression: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Learners lists registered learners with their answer counts.
func (s *ReportService) Learners(ctx context.Context, classe string) ([]LearnerRow, error) {
	query := `
		SELECT u.username, COALESCE(u.email, ''), p.classe, p.points,
			(SELECT COUNT(*) FROM soumissions s WHERE s.profil_id = p.id)
		FROM profils p
		JOIN users u ON u.id = p.user_id
		WHERE u.is_guest = ?`
	args := []interface{}{false}
	if classe != "" {
		query += " AND p.classe = ?"
		args = append(args, curriculum.NormalizeGrade(classe))
	}
	query += " ORDER BY p.classe, p.points DESC, u.username"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}
	defer rows.Close()

	var out []LearnerRow
	for rows.Next() {
		var r LearnerRow
		if err := rows.Scan(&r.Username, &r.Email, &r.Classe, &r.Points, &r.Reponses); err != nil {
			return nil, fmt.Errorf("failed to scan learner: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// WriteProgressionReport writes an XLSX workbook with a progression sheet
// and a learner summary sheet.
func (s *ReportService) WriteProgressionReport(ctx context.Context, w io.Writer, classe string) error {
	progressions, err := s.Progressions(ctx, classe)
	if err != nil {
		return err
	}
	learners, err := s.Learners(ctx, classe)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetProgressions); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetLearners); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	progressionHeader := []interface{}{"Élève", "Classe", "Matière", "Leçon", "Score", "Réussis", "Total", "Taux (%)", "Erreurs consécutives", "Dernière activité"}
	if err := writeRow(f, sheetProgressions, 1, progressionHeader); err != nil {
		return err
	}
	for i, r := range progressions {
		row := []interface{}{
			r.Username,
			curriculum.GradeLabel(r.Classe),
			curriculum.SubjectLabel(r.Matiere),
			r.Topic,
			r.ScoreTotal,
			r.ExercicesReussis,
			r.ExercicesTotal,
			fmt.Sprintf("%.1f", r.TauxReussite()),
			r.ErreursConsecutives,
			r.DerniereActivite.Format("2006-01-02 15:04"),
		}
		if err := writeRow(f, sheetProgressions, i+2, row); err != nil {
			return err
		}
	}

	learnerHeader := []interface{}{"Élève", "Email", "Classe", "Points", "Réponses"}
	if err := writeRow(f, sheetLearners, 1, learnerHeader); err != nil {
		return err
	}
	for i, r := range learners {
		row := []interface{}{r.Username, r.Email, curriculum.GradeLabel(r.Classe), r.Points, r.Reponses}
		if err := writeRow(f, sheetLearners, i+2, row); err != nil {
			return err
		}
	}

	for sheet, cols := range map[string]int{sheetProgressions: len(progressionHeader), sheetLearners: len(learnerHeader)} {
		last, err := excelize.CoordinatesToCellName(cols, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	s.log.Info("progression report written", "classe", classe, "progressions", len(progressions), "learners", len(learners))
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
