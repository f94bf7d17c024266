package handlers

import (
	"net/http"

	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

// AccountHandler handles signup, login, the learner's own profile and
// progress.
type AccountHandler struct {
	authService        *service.AuthService
	profileService     *service.ProfileService
	progressionService *service.ProgressionService
	aiPolicy           curriculum.AIPolicy
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *service.AuthService, profileService *service.ProfileService, progressionService *service.ProgressionService, policy curriculum.AIPolicy) *AccountHandler {
	return &AccountHandler{
		authService:        authService,
		profileService:     profileService,
		progressionService: progressionService,
		aiPolicy:           policy,
	}
}

type signupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Classe    string `json:"classe"`
}

// Signup creates a learner account and returns its token.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}
	res, err := h.authService.Signup(r.Context(), service.SignupRequest{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Classe:    req.Classe,
	})
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAuthView(res, h.aiPolicy))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login accepts a username or an e-mail address.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}
	res, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthView(res, h.aiPolicy))
}

func (h *AccountHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Mine(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(profile, h.aiPolicy))
}

type profileUpdateRequest struct {
	Classe      *string `json:"classe"`
	PhotoProfil *string `json:"photo_profil"`
	User        *struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
	} `json:"user"`
}

// UpdateMyProfile applies a partial update to the caller's profile.
func (h *AccountHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}
	upd := models.ProfileUpdate{Classe: req.Classe, PhotoProfil: req.PhotoProfil}
	if req.User != nil {
		upd.FirstName = req.User.FirstName
		upd.LastName = req.User.LastName
		upd.Email = req.User.Email
	}

	profile, err := h.profileService.Update(r.Context(), IdentityFromContext(r.Context()), upd)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(profile, h.aiPolicy))
}

func (h *AccountHandler) Progressions(w http.ResponseWriter, r *http.Request) {
	list, err := h.progressionService.List(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgressionViews(list))
}
