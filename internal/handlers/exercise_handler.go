package handlers

import (
	"net/http"

	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

// ExerciseHandler serves adaptive batches and answer grading.
type ExerciseHandler struct {
	exercises *service.ExerciseService
}

// NewExerciseHandler creates a new exercise handler
func NewExerciseHandler(exercises *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exercises: exercises}
}

// AdaptiveBatch returns the next exercises of a topic. Repeated "exclude[]"
// or "exclude" query values list exercises the client has already shown.
func (h *ExerciseHandler) AdaptiveBatch(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topic_id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	q := r.URL.Query()
	exclude := service.ParseExcludeIDs(append(q["exclude[]"], q["exclude"]...))
	batch, err := h.exercises.AdaptiveBatch(r.Context(), IdentityFromContext(r.Context()), topicID, exclude)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, BatchView{
		Exercices:    newExerciseViews(batch.Exercises),
		HasMore:      batch.HasMore,
		TotalInTopic: batch.TotalInTopic,
	})
}

type submitRequest struct {
	ExerciceID   int64  `json:"exercice_id"`
	ReponseIndex *int   `json:"reponse_index"`
	TempsReponse *int   `json:"temps_reponse"`
	Classe       string `json:"classe"`
}

// Submit grades one answer.
func (h *ExerciseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	feedback, err := h.exercises.Submit(r.Context(), IdentityFromContext(r.Context()), service.Submission{
		ExerciceID:   req.ExerciceID,
		ReponseIndex: req.ReponseIndex,
		TempsReponse: req.TempsReponse,
		Classe:       req.Classe,
	})
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newFeedbackView(feedback))
}
