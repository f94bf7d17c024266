package models

// Exercise types
const (
	ExerciseMultipleChoice = "choix_multiple"
	ExerciseDragDrop       = "drag_drop"
	ExerciseCalculation    = "calcul"
	ExerciseObservation    = "observation"
)

// Default feedback texts for exercises created without explicit feedback.
const (
	DefaultFeedbackSuccess = "Bravo ! Excellente réponse !"
	DefaultFeedbackFail    = "Pas bon, essaie encore !"
	DefaultRewardPoints    = 10
)

// Subject is a school subject (matière) identified by a stable code.
type Subject struct {
	ID            int64
	Nom           string
	Description   string
	ImageURL      *string
	AudioIntroURL *string
	Ordre         int
}

// Topic is a curriculum unit scoped to one subject and one grade.
type Topic struct {
	ID           int64
	MatiereID    int64
	MatiereCode  string
	Classe       string
	Titre        string
	Resume       string
	ContenuCours *string
	ImageURL     *string
	AudioURL     *string
	Ordre        int
}

// HasLesson reports whether long-form lesson content is already cached.
func (t *Topic) HasLesson() bool {
	return t.ContenuCours != nil && *t.ContenuCours != ""
}

// Exercise is an interactive question belonging to a topic.
type Exercise struct {
	ID                      int64
	TopicID                 int64
	TopicTitre              string
	TypeExercice            string
	Question                string
	QuestionImageURL        *string
	QuestionAudioURL        *string
	OptionsImages           []string
	OptionsText             []string
	CorrectIndex            int
	FeedbackSuccessText     string
	FeedbackSuccessAudioURL *string
	FeedbackFailText        string
	FeedbackFailAudioURL    *string
	Difficulte              int
	PointsRecompense        int
	GenereParIA             bool
}

// Options returns the answer options used for grading: the text options
// when present, otherwise the image options.
func (e *Exercise) Options() []string {
	if len(e.OptionsText) > 0 {
		return e.OptionsText
	}
	return e.OptionsImages
}
