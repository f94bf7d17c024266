package models

import "time"

// Submission is an immutable record of one answer attempt.
type Submission struct {
	ID             int64
	ProfilID       int64
	ExerciceID     int64
	ReponseIndex   int
	EstCorrecte    bool
	Score          int
	TempsReponse   *int
	DateSoumission time.Time
}

// Progression aggregates a learner's attempts on one topic.
type Progression struct {
	ID                   int64
	ProfilID             int64
	TopicID              int64
	ScoreTotal           int
	ExercicesReussis     int
	ExercicesTotal       int
	ErreursConsecutives  int
	DateDerniereActivite time.Time

	// Topic is populated by listing queries.
	Topic *Topic
}

// TauxReussite returns the success rate as a percentage.
func (p *Progression) TauxReussite() float64 {
	if p.ExercicesTotal == 0 {
		return 0
	}
	return 100 * float64(p.ExercicesReussis) / float64(p.ExercicesTotal)
}
