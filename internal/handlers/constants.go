package handlers

const (
	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 1 << 20

	ErrInvalidJSON = "Corps de requête JSON invalide."
	ErrInvalidID   = "Identifiant invalide."
	anonymousActor = "Anonymous"
)
