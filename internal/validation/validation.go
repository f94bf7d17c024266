// Package validation checks user-supplied account fields. Failures are
// *apperr.Error values carrying the offending field.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+\-]+$`)
)

const (
	// MaxUsernameLength matches the users.username column.
	MaxUsernameLength = 150

	// GuestUsernamePrefix is reserved for the accounts of anonymous visitors.
	GuestUsernamePrefix = "anonyme_"
)

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.ValidationField("email", "L'email est requis.")
	}
	if !emailRegex.MatchString(email) {
		return apperr.ValidationField("email", "Adresse email invalide.")
	}
	return nil
}

// ValidateUsername accepts letters, digits and @.+-_ up to MaxUsernameLength
// characters. Names in the guest namespace are refused.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperr.ValidationField("username", "Le nom d'utilisateur est requis.")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return apperr.ValidationField("username", fmt.Sprintf("Le nom d'utilisateur ne doit pas dépasser %d caractères.", MaxUsernameLength))
	}
	if !usernameRegex.MatchString(username) {
		return apperr.ValidationField("username", "Le nom d'utilisateur contient des caractères non autorisés.")
	}
	if strings.HasPrefix(strings.ToLower(username), GuestUsernamePrefix) {
		return apperr.ValidationField("username", fmt.Sprintf("Le préfixe « %s » est réservé.", GuestUsernamePrefix))
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return apperr.ValidationField("password", "Le mot de passe est requis.")
	}
	if len(password) < security.MinPasswordLength {
		return apperr.ValidationField("password",
			fmt.Sprintf("Le mot de passe doit contenir au moins %d caractères.", security.MinPasswordLength))
	}
	return nil
}

// ValidateGrade checks that classe is one of the known grade codes.
func ValidateGrade(classe string) error {
	if strings.TrimSpace(classe) == "" {
		return apperr.ValidationField("classe", "La classe est requise.")
	}
	if !curriculum.IsValidGrade(classe) {
		return apperr.ValidationField("classe", fmt.Sprintf("« %s » n'est pas une classe valide.", classe))
	}
	return nil
}
