package handlers

import (
	"net/http"

	"github.com/CheickOuedraogo/tuteur-backend/internal/ai"
	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

// LearningHandler serves lessons, the tutor chat and on-demand exercise
// generation.
type LearningHandler struct {
	lessons    *service.LessonService
	tutor      *service.TutorService
	generation *service.GenerationService
}

func NewLearningHandler(lessons *service.LessonService, tutor *service.TutorService, generation *service.GenerationService) *LearningHandler {
	return &LearningHandler{
		lessons:    lessons,
		tutor:      tutor,
		generation: generation,
	}
}

// Explain returns a topic's lesson, generating it on first access for
// grades that use AI content.
func (h *LearningHandler) Explain(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "topic_id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	lesson, err := h.lessons.Explain(r.Context(), IdentityFromContext(r.Context()), topicID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLessonView(lesson))
}

type chatRequest struct {
	Message string        `json:"message"`
	History []ai.ChatTurn `json:"history"`
}

// Chat answers one message of the tutor conversation.
func (h *LearningHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}
	reply, err := h.tutor.Chat(r.Context(), IdentityFromContext(r.Context()), service.ChatRequest{
		Message: req.Message,
		History: req.History,
	})
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatView{Response: reply})
}

type generateRequest struct {
	Count int `json:"count"`
}

// GenerateExercises creates new exercises for a topic with the AI gateway.
func (h *LearningHandler) GenerateExercises(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}
	exercises, err := h.generation.GenerateForLearner(r.Context(), IdentityFromContext(r.Context()), topicID, req.Count)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, GeneratedView{
		Exercices: newExerciseViews(exercises),
		Generated: len(exercises),
	})
}
