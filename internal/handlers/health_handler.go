package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
)

type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz reports whether the database answers.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		respondWithError(w, r, apperr.Internal(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": h.db.Dialect.Name(),
	})
}
