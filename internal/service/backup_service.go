package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

const backupVersion = "1.0"

// BackupData is a JSON snapshot of learner accounts and curriculum content.
// Subjects are seeded by migrations, so topics reference them by code.
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	DatabaseType string              `json:"database_type"`
	Users        []UserBackup        `json:"users"`
	Profiles     []ProfileBackup     `json:"profils"`
	Topics       []TopicBackup       `json:"topics"`
	Exercises    []ExerciseBackup    `json:"exercices"`
	Submissions  []SubmissionBackup  `json:"soumissions"`
	Progressions []ProgressionBackup `json:"progressions"`
}

type UserBackup struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsActive     bool       `json:"is_active"`
	IsGuest      bool       `json:"is_guest"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ProfileBackup struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	Classe           string          `json:"classe"`
	PhotoProfil      *string         `json:"photo_profil"`
	Points           int             `json:"points"`
	Badges           json.RawMessage `json:"badges"`
	DateCreation     time.Time       `json:"date_creation"`
	DateModification time.Time       `json:"date_modification"`
}

type TopicBackup struct {
	ID           int64   `json:"id"`
	Matiere      string  `json:"matiere"`
	Classe       string  `json:"classe"`
	Titre        string  `json:"titre"`
	Resume       string  `json:"resume"`
	ContenuCours *string `json:"contenu_cours"`
	ImageURL     *string `json:"image_url"`
	AudioURL     *string `json:"audio_url"`
	Ordre        int     `json:"ordre"`
}

type ExerciseBackup struct {
	ID                      int64           `json:"id"`
	TopicID                 int64           `json:"topic_id"`
	TypeExercice            string          `json:"type_exercice"`
	Question                string          `json:"question"`
	QuestionImageURL        *string         `json:"question_image_url"`
	QuestionAudioURL        *string         `json:"question_audio_url"`
	OptionsImages           json.RawMessage `json:"options_images"`
	OptionsText             json.RawMessage `json:"options_text"`
	CorrectIndex            int             `json:"correct_index"`
	FeedbackSuccessText     string          `json:"feedback_success_text"`
	FeedbackSuccessAudioURL *string         `json:"feedback_success_audio_url"`
	FeedbackFailText        string          `json:"feedback_fail_text"`
	FeedbackFailAudioURL    *string         `json:"feedback_fail_audio_url"`
	Difficulte              int             `json:"difficulte"`
	PointsRecompense        int             `json:"points_recompense"`
	GenereParIA             bool            `json:"genere_par_ia"`
}

type SubmissionBackup struct {
	ID             int64     `json:"id"`
	ProfilID       int64     `json:"profil_id"`
	ExerciceID     int64     `json:"exercice_id"`
	ReponseIndex   int       `json:"reponse_index"`
	EstCorrecte    bool      `json:"est_correcte"`
	Score          int       `json:"score"`
	TempsReponse   *int64    `json:"temps_reponse"`
	DateSoumission time.Time `json:"date_soumission"`
}

type ProgressionBackup struct {
	ID                   int64     `json:"id"`
	ProfilID             int64     `json:"profil_id"`
	TopicID              int64     `json:"topic_id"`
	ScoreTotal           int       `json:"score_total"`
	ExercicesReussis     int       `json:"exercices_reussis"`
	ExercicesTotal       int       `json:"exercices_total"`
	ErreursConsecutives  int       `json:"erreurs_consecutives"`
	DateDerniereActivite time.Time `json:"date_derniere_activite"`
}

// BackupService exports and restores the database as a portable JSON
// document, independent of the SQL dialect.
type BackupService struct {
	db  *database.DB
	log *logger.Logger
}

func NewBackupService(db *database.DB, log *logger.Logger) *BackupService {
	if log == nil {
		log = logger.Nop()
	}
	return &BackupService{db: db, log: log}
}

// Snapshot reads every exported table. Guest accounts are skipped with
// everything they own.
func (s *BackupService) Snapshot(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.Name(),
	}

	steps := []struct {
		name string
		fn   func(context.Context, *BackupData) error
	}{
		{"users", s.exportUsers},
		{"profiles", s.exportProfiles},
		{"topics", s.exportTopics},
		{"exercises", s.exportExercises},
		{"submissions", s.exportSubmissions},
		{"progressions", s.exportProgressions},
	}
	for _, step := range steps {
		if err := step.fn(ctx, backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}
	return backup, nil
}

// ExportToWriter writes an indented snapshot to w.
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Info("database exported",
		"users", len(backup.Users),
		"topics", len(backup.Topics),
		"exercises", len(backup.Exercises),
		"submissions", len(backup.Submissions),
		"progressions", len(backup.Progressions))
	return nil
}

// ImportFromReader restores a snapshot into an empty schema in a single
// transaction, keeping the original IDs.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	s.log.Info("importing backup", "version", backup.Version, "exported_at", backup.ExportedAt, "source", backup.DatabaseType)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := importUsers(ctx, tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if err := importProfiles(ctx, tx, backup.Profiles); err != nil {
			return fmt.Errorf("failed to import profiles: %w", err)
		}
		if err := importTopics(ctx, tx, backup.Topics); err != nil {
			return fmt.Errorf("failed to import topics: %w", err)
		}
		if err := importExercises(ctx, tx, backup.Exercises); err != nil {
			return fmt.Errorf("failed to import exercises: %w", err)
		}
		if err := importSubmissions(ctx, tx, backup.Submissions); err != nil {
			return fmt.Errorf("failed to import submissions: %w", err)
		}
		if err := importProgressions(ctx, tx, backup.Progressions); err != nil {
			return fmt.Errorf("failed to import progressions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.resetSequences(ctx); err != nil {
		return err
	}
	s.log.Info("database import completed", "users", len(backup.Users), "topics", len(backup.Topics), "exercises", len(backup.Exercises))
	return nil
}

// resetSequences moves serial counters past the imported IDs on engines
// that keep them outside the table.
func (s *BackupService) resetSequences(ctx context.Context) error {
	for _, table := range []string{"users", "profils", "topics", "exercices", "soumissions", "progressions"} {
		query, ok := s.db.Dialect.ResetSequenceQuery(table)
		if !ok {
			return nil
		}
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) exportUsers(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, COALESCE(email, ''), password_hash, first_name, last_name, is_active, is_guest, expires_at, created_at
		FROM users WHERE is_guest = ? ORDER BY id`, false)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		var expires sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsActive, &u.IsGuest, &expires, &u.CreatedAt); err != nil {
			return err
		}
		if expires.Valid {
			u.ExpiresAt = &expires.Time
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportProfiles(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.classe, p.photo_profil, p.points, p.badges, p.date_creation, p.date_modification
		FROM profils p JOIN users u ON u.id = p.user_id
		WHERE u.is_guest = ? ORDER BY p.id`, false)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProfileBackup
		var badges string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Classe, &p.PhotoProfil, &p.Points, &badges, &p.DateCreation, &p.DateModification); err != nil {
			return err
		}
		p.Badges = rawList(badges)
		backup.Profiles = append(backup.Profiles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportTopics(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, m.nom, t.classe, t.titre, t.resume, t.contenu_cours, t.image_url, t.audio_url, t.ordre
		FROM topics t JOIN matieres m ON m.id = t.matiere_id ORDER BY t.id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TopicBackup
		if err := rows.Scan(&t.ID, &t.Matiere, &t.Classe, &t.Titre, &t.Resume, &t.ContenuCours, &t.ImageURL, &t.AudioURL, &t.Ordre); err != nil {
			return err
		}
		backup.Topics = append(backup.Topics, t)
	}
	return rows.Err()
}

func (s *BackupService) exportExercises(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic_id, type_exercice, question, question_image_url, question_audio_url, options_images, options_text,
			correct_index, feedback_success_text, feedback_success_audio_url, feedback_fail_text, feedback_fail_audio_url,
			difficulte, points_recompense, genere_par_ia
		FROM exercices ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e ExerciseBackup
		var images, texts string
		if err := rows.Scan(&e.ID, &e.TopicID, &e.TypeExercice, &e.Question, &e.QuestionImageURL, &e.QuestionAudioURL, &images, &texts,
			&e.CorrectIndex, &e.FeedbackSuccessText, &e.FeedbackSuccessAudioURL, &e.FeedbackFailText, &e.FeedbackFailAudioURL,
			&e.Difficulte, &e.PointsRecompense, &e.GenereParIA); err != nil {
			return err
		}
		e.OptionsImages = rawList(images)
		e.OptionsText = rawList(texts)
		backup.Exercises = append(backup.Exercises, e)
	}
	return rows.Err()
}

func (s *BackupService) exportSubmissions(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.profil_id, s.exercice_id, s.reponse_index, s.est_correcte, s.score, s.temps_reponse, s.date_soumission
		FROM soumissions s
		JOIN profils p ON p.id = s.profil_id
		JOIN users u ON u.id = p.user_id
		WHERE u.is_guest = ? ORDER BY s.id`, false)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sb SubmissionBackup
		var temps sql.NullInt64
		if err := rows.Scan(&sb.ID, &sb.ProfilID, &sb.ExerciceID, &sb.ReponseIndex, &sb.EstCorrecte, &sb.Score, &temps, &sb.DateSoumission); err != nil {
			return err
		}
		if temps.Valid {
			sb.TempsReponse = &temps.Int64
		}
		backup.Submissions = append(backup.Submissions, sb)
	}
	return rows.Err()
}

func (s *BackupService) exportProgressions(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pr.id, pr.profil_id, pr.topic_id, pr.score_total, pr.exercices_reussis, pr.exercices_total,
			pr.erreurs_consecutives, pr.date_derniere_activite
		FROM progressions pr
		JOIN profils p ON p.id = pr.profil_id
		JOIN users u ON u.id = p.user_id
		WHERE u.is_guest = ? ORDER BY pr.id`, false)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProgressionBackup
		if err := rows.Scan(&p.ID, &p.ProfilID, &p.TopicID, &p.ScoreTotal, &p.ExercicesReussis, &p.ExercicesTotal,
			&p.ErreursConsecutives, &p.DateDerniereActivite); err != nil {
			return err
		}
		backup.Progressions = append(backup.Progressions, p)
	}
	return rows.Err()
}

func importUsers(ctx context.Context, tx *database.Tx, users []UserBackup) error {
	for _, u := range users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, username, email, password_hash, first_name, last_name, is_active, is_guest, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, nullIfEmpty(u.Email), u.PasswordHash, u.FirstName, u.LastName, u.IsActive, u.IsGuest, u.ExpiresAt, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}

func importProfiles(ctx context.Context, tx *database.Tx, profiles []ProfileBackup) error {
	for _, p := range profiles {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profils (id, user_id, classe, photo_profil, points, badges, date_creation, date_modification)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.UserID, p.Classe, p.PhotoProfil, p.Points, listText(p.Badges), p.DateCreation, p.DateModification)
		if err != nil {
			return fmt.Errorf("profile %d: %w", p.ID, err)
		}
	}
	return nil
}

func importTopics(ctx context.Context, tx *database.Tx, topics []TopicBackup) error {
	subjects := make(map[string]int64)
	for _, t := range topics {
		matiereID, ok := subjects[t.Matiere]
		if !ok {
			if err := tx.QueryRowContext(ctx, "SELECT id FROM matieres WHERE nom = ?", t.Matiere).Scan(&matiereID); err != nil {
				return fmt.Errorf("subject %q: %w", t.Matiere, err)
			}
			subjects[t.Matiere] = matiereID
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO topics (id, matiere_id, classe, titre, resume, contenu_cours, image_url, audio_url, ordre)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, matiereID, t.Classe, t.Titre, t.Resume, t.ContenuCours, t.ImageURL, t.AudioURL, t.Ordre)
		if err != nil {
			return fmt.Errorf("topic %d: %w", t.ID, err)
		}
	}
	return nil
}

func importExercises(ctx context.Context, tx *database.Tx, exercises []ExerciseBackup) error {
	for _, e := range exercises {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO exercices (id, topic_id, type_exercice, question, question_image_url, question_audio_url, options_images, options_text,
				correct_index, feedback_success_text, feedback_success_audio_url, feedback_fail_text, feedback_fail_audio_url,
				difficulte, points_recompense, genere_par_ia)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.TopicID, e.TypeExercice, e.Question, e.QuestionImageURL, e.QuestionAudioURL, listText(e.OptionsImages), listText(e.OptionsText),
			e.CorrectIndex, e.FeedbackSuccessText, e.FeedbackSuccessAudioURL, e.FeedbackFailText, e.FeedbackFailAudioURL,
			e.Difficulte, e.PointsRecompense, e.GenereParIA)
		if err != nil {
			return fmt.Errorf("exercise %d: %w", e.ID, err)
		}
	}
	return nil
}

func importSubmissions(ctx context.Context, tx *database.Tx, submissions []SubmissionBackup) error {
	for _, sb := range submissions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO soumissions (id, profil_id, exercice_id, reponse_index, est_correcte, score, temps_reponse, date_soumission)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sb.ID, sb.ProfilID, sb.ExerciceID, sb.ReponseIndex, sb.EstCorrecte, sb.Score, sb.TempsReponse, sb.DateSoumission)
		if err != nil {
			return fmt.Errorf("submission %d: %w", sb.ID, err)
		}
	}
	return nil
}

func importProgressions(ctx context.Context, tx *database.Tx, progressions []ProgressionBackup) error {
	for _, p := range progressions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO progressions (id, profil_id, topic_id, score_total, exercices_reussis, exercices_total, erreurs_consecutives, date_derniere_activite)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.ProfilID, p.TopicID, p.ScoreTotal, p.ExercicesReussis, p.ExercicesTotal, p.ErreursConsecutives, p.DateDerniereActivite)
		if err != nil {
			return fmt.Errorf("progression %d: %w", p.ID, err)
		}
	}
	return nil
}

// rawList keeps a stored JSON list as-is, falling back to an empty list.
func rawList(stored string) json.RawMessage {
	if stored == "" || !json.Valid([]byte(stored)) {
		return json.RawMessage("[]")
	}
	return json.RawMessage(stored)
}

func listText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "[]"
	}
	return string(raw)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
