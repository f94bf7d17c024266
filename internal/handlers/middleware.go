package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	IdentityContextKey ContextKey = "identity"
	loggerContextKey   ContextKey = "logger"
	stateContextKey    ContextKey = "request_state"
)

// requestState is shared between the access logger and inner middleware so
// the log line can name the caller resolved further down the chain.
type requestState struct {
	actor string
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	signer       *security.SessionSigner
	guestTTL     time.Duration
	secureCookie bool
	log          *logger.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, signer *security.SessionSigner, guestTTL time.Duration, secureCookie bool, log *logger.Logger) *Middleware {
	if log == nil {
		log = logger.Nop()
	}
	return &Middleware{
		authService:  authService,
		signer:       signer,
		guestTTL:     guestTTL,
		secureCookie: secureCookie,
		log:          log,
	}
}

// Identify resolves the caller. A bearer token identifies an account; any
// other caller is an anonymous visitor keyed by the signed guest cookie,
// which is issued when missing and refreshed on every request.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id service.Identity

		if header := r.Header.Get("Authorization"); header != "" {
			token := security.BearerToken(header)
			if token == "" {
				respondWithError(w, r, apperr.Unauthorized())
				return
			}
			user, err := m.authService.Authenticate(r.Context(), token)
			if err != nil {
				respondWithError(w, r, err)
				return
			}
			id = service.Identity{UserID: user.ID, Username: user.Username}
		} else {
			key := ""
			if cookie, err := r.Cookie(security.GuestCookieName); err == nil {
				key, _ = m.signer.Verify(cookie.Value)
			}
			if key == "" {
				key = security.NewSessionKey()
			}
			id = service.Identity{SessionKey: key}
			expires := time.Now().Add(m.guestTTL)
			http.SetCookie(w, security.CreateSessionCookie(r, security.GuestCookieName, m.signer.Sign(key), expires, m.secureCookie))
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, id)
		if state, ok := ctx.Value(stateContextKey).(*requestState); ok {
			state.actor = actorName(id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth is middleware that requires an authenticated account
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromContext(r.Context()).Authenticated() {
			respondWithError(w, r, apperr.Unauthorized())
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP. A failing limiter lets the
// request through.
func (m *Middleware) RateLimit(limiter security.Limiter, scope string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allowed, err := limiter.Allow(r.Context(), scope+":"+security.GetClientIP(r))
		if err != nil {
			m.log.Warn("rate limiter unavailable", "scope", scope, "error", err)
			allowed = true
		}
		if !allowed {
			respondWithError(w, r, apperr.New(apperr.KindRateLimited, ""))
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs every request with its status, duration and caller.
func Logging(log *logger.Logger, next http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		state := &requestState{actor: anonymousActor}
		ctx := context.WithValue(r.Context(), loggerContextKey, log)
		ctx = context.WithValue(ctx, stateContextKey, state)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		fields := []interface{}{
			"method", strings.ToUpper(r.Method),
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"user", state.actor,
		}
		switch {
		case rec.status >= 500:
			log.Error("HTTP request", fields...)
		case rec.status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	})
}

// IdentityFromContext returns the caller resolved by Identify.
func IdentityFromContext(ctx context.Context) service.Identity {
	id, _ := ctx.Value(IdentityContextKey).(service.Identity)
	return id
}

func loggerFromContext(ctx context.Context) *logger.Logger {
	if log, ok := ctx.Value(loggerContextKey).(*logger.Logger); ok {
		return log
	}
	return logger.Nop()
}

func actorFromContext(ctx context.Context) string {
	return actorName(IdentityFromContext(ctx))
}

func actorName(id service.Identity) string {
	if id.Authenticated() {
		return id.Username
	}
	return anonymousActor
}
