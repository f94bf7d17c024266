package handlers

import (
	"net/http"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
)

// API groups the handlers mounted under /api/.
type API struct {
	Middleware *Middleware
	Accounts   *AccountHandler
	Curriculum *CurriculumHandler
	Exercises  *ExerciseHandler
	Learning   *LearningHandler
	Health     *HealthHandler

	// AuthLimiter throttles signup and login per client IP. Nil disables it.
	AuthLimiter security.Limiter
}

// Register mounts the API routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	m := a.Middleware
	auth := m.RequireAuth
	limit := func(scope string, h http.HandlerFunc) http.HandlerFunc {
		if a.AuthLimiter == nil {
			return h
		}
		return m.RateLimit(a.AuthLimiter, scope, h)
	}

	api := http.NewServeMux()

	// Accounts
	api.HandleFunc("POST /api/auth/signup/{$}", limit("signup", a.Accounts.Signup))
	api.HandleFunc("POST /api/auth/login/{$}", limit("login", a.Accounts.Login))
	api.HandleFunc("GET /api/profils/mon_profil/{$}", auth(a.Accounts.MyProfile))
	api.HandleFunc("PATCH /api/profils/mon_profil/{$}", auth(a.Accounts.UpdateMyProfile))
	api.HandleFunc("GET /api/progressions/{$}", auth(a.Accounts.Progressions))

	// Curriculum
	api.HandleFunc("GET /api/matieres/{$}", a.Curriculum.ListSubjects)
	api.HandleFunc("GET /api/matieres/{id}/{$}", a.Curriculum.GetSubject)
	api.HandleFunc("GET /api/topics/{$}", a.Curriculum.ListTopics)
	api.HandleFunc("GET /api/topics/{id}/{$}", a.Curriculum.GetTopic)
	api.HandleFunc("GET /api/exercices/{$}", a.Curriculum.ListExercises)
	api.HandleFunc("GET /api/exercices/{id}/{$}", a.Curriculum.GetExercise)
	api.HandleFunc("GET /api/accueil/{classe}/{$}", a.Curriculum.Home)

	// Learning
	api.HandleFunc("GET /api/exercices-adaptatifs/{topic_id}/{$}", a.Exercises.AdaptiveBatch)
	api.HandleFunc("POST /api/exercices/soumettre/{$}", a.Exercises.Submit)
	api.HandleFunc("GET /api/explication/{topic_id}/{$}", a.Learning.Explain)
	api.HandleFunc("POST /api/tuteur-intelligent/chat/{$}", auth(a.Learning.Chat))
	api.HandleFunc("POST /api/topics/{id}/generer-exercices/{$}", auth(a.Learning.GenerateExercises))

	api.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, r, apperr.NotFound(""))
	})

	mux.Handle("/api/", m.Identify(api))
	if a.Health != nil {
		mux.HandleFunc("GET /healthz", a.Health.Healthz)
	}
}
