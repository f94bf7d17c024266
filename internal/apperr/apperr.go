// Package apperr is the error taxonomy shared by services and the HTTP layer.
// Services return *Error values; the central HTTP error writer maps them to
// a status code and a {success:false, error:{code,message}} envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidExercise
	KindUnauthorized
	KindClassNotAllowed
	KindNotFound
	KindProfileNotFound
	KindRateLimited
	KindAIConfiguration
	KindAIService
	KindAudioGeneration
)

type kindInfo struct {
	status  int
	code    string
	message string
}

var kinds = map[Kind]kindInfo{
	KindInternal:        {http.StatusInternalServerError, "internal_error", "Une erreur interne est survenue."},
	KindValidation:      {http.StatusBadRequest, "validation_error", "Données invalides."},
	KindInvalidExercise: {http.StatusBadRequest, "exercice_invalide", "Exercice invalide."},
	KindUnauthorized:    {http.StatusUnauthorized, "not_authenticated", "Authentification requise."},
	KindClassNotAllowed: {http.StatusForbidden, "classe_non_autorisee", "Cette fonctionnalité n'est pas disponible pour votre classe."},
	KindNotFound:        {http.StatusNotFound, "not_found", "Ressource introuvable."},
	KindProfileNotFound: {http.StatusNotFound, "profil_non_trouve", "Profil élève introuvable."},
	KindRateLimited:     {http.StatusTooManyRequests, "rate_limited", "Trop de requêtes. Réessayez plus tard."},
	KindAIConfiguration: {http.StatusInternalServerError, "ia_config_error", "Service IA non configuré."},
	KindAIService:       {http.StatusServiceUnavailable, "ia_service_error", "Le service IA est temporairement indisponible. Réessayez plus tard."},
	KindAudioGeneration: {http.StatusInternalServerError, "audio_generation_error", "Erreur lors de la génération audio."},
}

// Error is an application error with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Fields carries per-field validation detail.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code(), e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error's kind.
func (e *Error) Status() int {
	return kinds[e.Kind].status
}

// Code returns the stable machine-readable code.
func (e *Error) Code() string {
	return kinds[e.Kind].code
}

// UserMessage returns the message shown to learners.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return kinds[e.Kind].message
}

// New creates an error of the given kind. An empty message uses the kind's default.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

// ValidationField builds a validation error carrying detail for one field.
func ValidationField(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: map[string]string{field: message}}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func ProfileNotFound() *Error {
	return New(KindProfileNotFound, "")
}

func Unauthorized() *Error {
	return New(KindUnauthorized, "")
}

func ClassNotAllowed(message string) *Error {
	return New(KindClassNotAllowed, message)
}

func InvalidExercise(message string) *Error {
	return New(KindInvalidExercise, message)
}

func Internal(err error) *Error {
	return Wrap(KindInternal, "", err)
}

// From extracts an *Error from err's chain. Errors outside the taxonomy are
// reported as internal errors.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err's chain holds an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
