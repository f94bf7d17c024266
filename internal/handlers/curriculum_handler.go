package handlers

import (
	"net/http"

	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

// CurriculumHandler serves the read-only curriculum: subjects, topics,
// exercises and the grade landing page.
type CurriculumHandler struct {
	curriculum *service.CurriculumService
}

func NewCurriculumHandler(curriculum *service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{curriculum: curriculum}
}

func (h *CurriculumHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.curriculum.Subjects(r.Context(), IdentityFromContext(r.Context()), r.URL.Query().Get("classe"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubjectViews(subjects))
}

func (h *CurriculumHandler) GetSubject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	subject, err := h.curriculum.Subject(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubjectView(subject))
}

func (h *CurriculumHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topics, err := h.curriculum.Topics(r.Context(), IdentityFromContext(r.Context()), q.Get("matiere"), q.Get("classe"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTopicViews(topics))
}

func (h *CurriculumHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	topic, err := h.curriculum.Topic(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTopicView(topic))
}

// ListExercises lists a topic's exercises, optionally of one difficulty.
func (h *CurriculumHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.curriculum.Exercises(r.Context(), queryInt(r, "topic"), int(queryInt(r, "difficulte")))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExerciseViews(exercises))
}

func (h *CurriculumHandler) GetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	exercise, err := h.curriculum.Exercise(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExerciseView(exercise))
}

// Home returns the landing data of a grade.
func (h *CurriculumHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.curriculum.Home(r.Context(), r.PathValue("classe"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newHomeView(home))
}
