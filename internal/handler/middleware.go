package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"martshift/internal/i18n"
	"martshift/internal/model"
	"martshift/internal/service"
)

type identityKey struct{}

// identityFrom returns the verified caller stored by RequireAuth.
func identityFrom(ctx context.Context) model.Identity {
	ident, _ := ctx.Value(identityKey{}).(model.Identity)
	return ident
}

// Middleware bundles the cross-cutting request wrappers.
type Middleware struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewMiddleware(auth *service.AuthService, logger *zap.Logger) *Middleware {
	return &Middleware{auth: auth, logger: logger}
}

// Logging logs each request with its duration and propagates the caller's
// Accept-Language preference into the context for localization.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if lang := r.Header.Get("Accept-Language"); lang != "" {
			r = r.WithContext(i18n.WithLocale(r.Context(), lang))
		}

		next.ServeHTTP(w, r)

		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// RequireAuth resolves the bearer token into a request-scoped identity.
// Handlers read it back with identityFrom; nothing identity-related lives
// in shared state.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)

		ident, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, m.logger, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, ident)))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
