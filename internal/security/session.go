package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GuestCookieName is the cookie carrying an anonymous visitor's session key.
const GuestCookieName = "faso_session"

// NewSessionKey creates a new random session key.
func NewSessionKey() string {
	return uuid.New().String()
}

// SessionSigner signs guest session keys with HMAC-SHA256 so a visitor cannot
// pick another visitor's key.
type SessionSigner struct {
	secret []byte
}

// NewSessionSigner creates a signer for secret.
func NewSessionSigner(secret string) *SessionSigner {
	return &SessionSigner{secret: []byte(secret)}
}

func (s *SessionSigner) mac(key string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(key))
	return hex.EncodeToString(m.Sum(nil))
}

// Sign returns the cookie value for key.
func (s *SessionSigner) Sign(key string) string {
	return key + "." + s.mac(key)
}

// Verify returns the session key from a signed cookie value.
func (s *SessionSigner) Verify(value string) (string, bool) {
	key, sig, ok := strings.Cut(value, ".")
	if !ok || key == "" {
		return "", false
	}
	if _, err := uuid.Parse(key); err != nil {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(key))) {
		return "", false
	}
	return key, true
}

// IsSecureRequest determines if the request is over HTTPS, directly or
// behind a reverse proxy.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateSessionCookie creates a session cookie. The Secure flag follows the
// request scheme unless forceSecure is set.
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time, forceSecure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   forceSecure || IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}
