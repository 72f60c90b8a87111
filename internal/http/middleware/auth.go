package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gestaozabele/demandas/internal/auth"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeySession contextKey = "session"
)

// Authenticator valida o token de sessão.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

// Auth exige sessão válida e injeta a sessão no contexto.
func Auth(gate Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "sessão ausente")
				return
			}

			session, err := gate.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "sessão inválida ou expirada")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// BearerToken extrai o token do cabeçalho Authorization.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// WithSession injeta a sessão no contexto; usado também nos testes.
func WithSession(ctx context.Context, s *auth.Session) context.Context {
	ctx = context.WithValue(ctx, ContextKeySession, s)
	return context.WithValue(ctx, ContextKeySubject, s.ID)
}

// GetSession recupera a sessão autenticada.
func GetSession(ctx context.Context) *auth.Session {
	val, _ := ctx.Value(ContextKeySession).(*auth.Session)
	return val
}

// GetSubject recupera o id da sessão.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}
