package handlers

import (
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

type UserView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ProfileView struct {
	ID           int64     `json:"id"`
	User         *UserView `json:"user"`
	Classe       string    `json:"classe"`
	PhotoProfil  *string   `json:"photo_profil"`
	Points       int       `json:"points"`
	Badges       []string  `json:"badges"`
	UtiliseIA    bool      `json:"utilise_ia"`
	DateCreation time.Time `json:"date_creation"`
}

type AuthView struct {
	Token  string       `json:"token"`
	User   *UserView    `json:"user"`
	Profil *ProfileView `json:"profil"`
}

type SubjectView struct {
	ID            int64   `json:"id"`
	Nom           string  `json:"nom"`
	NomAffiche    string  `json:"nom_affiche"`
	Description   string  `json:"description"`
	ImageURL      *string `json:"image_url"`
	AudioIntroURL *string `json:"audio_intro_url"`
	Ordre         int     `json:"ordre"`
}

type TopicView struct {
	ID         int64   `json:"id"`
	Matiere    int64   `json:"matiere"`
	MatiereNom string  `json:"matiere_nom"`
	Classe     string  `json:"classe"`
	Titre      string  `json:"titre"`
	Resume     string  `json:"resume"`
	ImageURL   *string `json:"image_url"`
	AudioURL   *string `json:"audio_url"`
	Ordre      int     `json:"ordre"`
}

type ExerciseView struct {
	ID                      int64    `json:"id"`
	Topic                   int64    `json:"topic"`
	TopicTitre              string   `json:"topic_titre"`
	TypeExercice            string   `json:"type_exercice"`
	Question                string   `json:"question"`
	QuestionImageURL        *string  `json:"question_image_url"`
	QuestionAudioURL        *string  `json:"question_audio_url"`
	OptionsImages           []string `json:"options_images"`
	OptionsText             []string `json:"options_text"`
	CorrectIndex            int      `json:"correct_index"`
	FeedbackSuccessText     string   `json:"feedback_success_text"`
	FeedbackSuccessAudioURL *string  `json:"feedback_success_audio_url"`
	FeedbackFailText        string   `json:"feedback_fail_text"`
	FeedbackFailAudioURL    *string  `json:"feedback_fail_audio_url"`
	Difficulte              int      `json:"difficulte"`
	PointsRecompense        int      `json:"points_recompense"`
	GenereParIA             bool     `json:"genere_par_ia"`
}

type ProgressionView struct {
	ID                   int64      `json:"id"`
	Eleve                int64      `json:"eleve"`
	Topic                int64      `json:"topic"`
	TopicDetail          *TopicView `json:"topic_detail"`
	ScoreTotal           int        `json:"score_total"`
	ExercicesReussis     int        `json:"exercices_reussis"`
	ExercicesTotal       int        `json:"exercices_total"`
	TauxReussite         float64    `json:"taux_reussite"`
	ErreursConsecutives  int        `json:"erreurs_consecutives"`
	DateDerniereActivite time.Time  `json:"date_derniere_activite"`
}

type BatchView struct {
	Exercices    []ExerciseView `json:"exercices"`
	HasMore      bool           `json:"has_more"`
	TotalInTopic int            `json:"total_in_topic"`
}

type FeedbackView struct {
	Success             bool    `json:"success"`
	Score               int     `json:"score"`
	FeedbackText        string  `json:"feedback_text"`
	Explication         string  `json:"explication"`
	ReponseCorrecte     string  `json:"reponse_correcte"`
	ReponseChoisie      string  `json:"reponse_choisie"`
	FeedbackAudioURL    *string `json:"feedback_audio_url"`
	VisuelDesc          string  `json:"visuel_desc"`
	PointsTotal         int     `json:"points_total"`
	ErreursConsecutives int     `json:"erreurs_consecutives"`
}

type LessonView struct {
	TopicID     int64   `json:"topic_id"`
	Titre       string  `json:"titre"`
	Explication string  `json:"explication"`
	AudioURL    *string `json:"audio_url"`
	ImageURL    *string `json:"image_url"`
	UtiliseIA   bool    `json:"utilise_ia"`
}

type HomeView struct {
	Classe           string        `json:"classe"`
	UtiliseIA        bool          `json:"utilise_ia"`
	Matieres         []SubjectView `json:"matieres"`
	TopicsPopulaires []TopicView   `json:"topics_populaires"`
}

type ChatView struct {
	Response string `json:"response"`
}

type GeneratedView struct {
	Exercices []ExerciseView `json:"exercices"`
	Generated int            `json:"generated"`
}

func newUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func newProfileView(p *models.Profile, policy curriculum.AIPolicy) *ProfileView {
	if p == nil {
		return nil
	}
	return &ProfileView{
		ID:           p.ID,
		User:         newUserView(p.User),
		Classe:       p.Classe,
		PhotoProfil:  p.PhotoProfil,
		Points:       p.Points,
		Badges:       orEmpty(p.Badges),
		UtiliseIA:    policy.UsesAI(p.Classe),
		DateCreation: p.DateCreation,
	}
}

func newAuthView(res *service.AuthResult, policy curriculum.AIPolicy) *AuthView {
	profile := res.Profile
	if profile != nil && profile.User == nil {
		profile.User = res.User
	}
	return &AuthView{
		Token:  res.Token,
		User:   newUserView(res.User),
		Profil: newProfileView(profile, policy),
	}
}

func newSubjectViews(subjects []models.Subject) []SubjectView {
	views := make([]SubjectView, 0, len(subjects))
	for _, s := range subjects {
		views = append(views, newSubjectView(&s))
	}
	return views
}

func newSubjectView(s *models.Subject) SubjectView {
	return SubjectView{
		ID:            s.ID,
		Nom:           s.Nom,
		NomAffiche:    curriculum.SubjectLabel(s.Nom),
		Description:   s.Description,
		ImageURL:      s.ImageURL,
		AudioIntroURL: s.AudioIntroURL,
		Ordre:         s.Ordre,
	}
}

func newTopicViews(topics []models.Topic) []TopicView {
	views := make([]TopicView, 0, len(topics))
	for i := range topics {
		views = append(views, *newTopicView(&topics[i]))
	}
	return views
}

func newTopicView(t *models.Topic) *TopicView {
	if t == nil {
		return nil
	}
	return &TopicView{
		ID:         t.ID,
		Matiere:    t.MatiereID,
		MatiereNom: curriculum.SubjectLabel(t.MatiereCode),
		Classe:     t.Classe,
		Titre:      t.Titre,
		Resume:     t.Resume,
		ImageURL:   t.ImageURL,
		AudioURL:   t.AudioURL,
		Ordre:      t.Ordre,
	}
}

func newExerciseViews(exercises []models.Exercise) []ExerciseView {
	views := make([]ExerciseView, 0, len(exercises))
	for i := range exercises {
		views = append(views, newExerciseView(&exercises[i]))
	}
	return views
}

func newExerciseView(e *models.Exercise) ExerciseView {
	return ExerciseView{
		ID:                      e.ID,
		Topic:                   e.TopicID,
		TopicTitre:              e.TopicTitre,
		TypeExercice:            e.TypeExercice,
		Question:                e.Question,
		QuestionImageURL:        e.QuestionImageURL,
		QuestionAudioURL:        e.QuestionAudioURL,
		OptionsImages:           orEmpty(e.OptionsImages),
		OptionsText:             orEmpty(e.OptionsText),
		CorrectIndex:            e.CorrectIndex,
		FeedbackSuccessText:     e.FeedbackSuccessText,
		FeedbackSuccessAudioURL: e.FeedbackSuccessAudioURL,
		FeedbackFailText:        e.FeedbackFailText,
		FeedbackFailAudioURL:    e.FeedbackFailAudioURL,
		Difficulte:              e.Difficulte,
		PointsRecompense:        e.PointsRecompense,
		GenereParIA:             e.GenereParIA,
	}
}

func newProgressionViews(progressions []models.Progression) []ProgressionView {
	views := make([]ProgressionView, 0, len(progressions))
	for i := range progressions {
		p := &progressions[i]
		views = append(views, ProgressionView{
			ID:                   p.ID,
			Eleve:                p.ProfilID,
			Topic:                p.TopicID,
			TopicDetail:          newTopicView(p.Topic),
			ScoreTotal:           p.ScoreTotal,
			ExercicesReussis:     p.ExercicesReussis,
			ExercicesTotal:       p.ExercicesTotal,
			TauxReussite:         p.TauxReussite(),
			ErreursConsecutives:  p.ErreursConsecutives,
			DateDerniereActivite: p.DateDerniereActivite,
		})
	}
	return views
}

func newFeedbackView(f *service.Feedback) FeedbackView {
	return FeedbackView{
		Success:             f.Success,
		Score:               f.Score,
		FeedbackText:        f.FeedbackText,
		Explication:         f.Explication,
		ReponseCorrecte:     f.ReponseCorrecte,
		ReponseChoisie:      f.ReponseChoisie,
		FeedbackAudioURL:    f.FeedbackAudioURL,
		VisuelDesc:          f.VisuelDesc,
		PointsTotal:         f.PointsTotal,
		ErreursConsecutives: f.ErreursConsecutives,
	}
}

func newLessonView(l *service.Lesson) LessonView {
	return LessonView{
		TopicID:     l.TopicID,
		Titre:       l.Titre,
		Explication: l.Explication,
		AudioURL:    l.AudioURL,
		ImageURL:    l.ImageURL,
		UtiliseIA:   l.UtiliseIA,
	}
}

func newHomeView(h *service.Home) HomeView {
	return HomeView{
		Classe:           h.Classe,
		UtiliseIA:        h.UtiliseIA,
		Matieres:         newSubjectViews(h.Matieres),
		TopicsPopulaires: newTopicViews(h.TopicsPopulaires),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
