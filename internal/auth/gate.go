package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidCredentials = errors.New("senha incorreta")
	ErrUnauthenticated    = errors.New("sessão inválida ou expirada")
	ErrNotConfigured      = errors.New("senha de acesso não configurada")
)

// Session é uma sessão autenticada do navegador.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gate controla o acesso com a senha compartilhada da equipe.
type Gate struct {
	passwordHash string
	tokens       *TokenManager
	revocations  Revocations
	now          func() time.Time
}

// NewGate cria o portão; revocations pode ser nil (logout só no cliente).
func NewGate(passwordHash string, tokens *TokenManager, revocations Revocations) *Gate {
	return &Gate{
		passwordHash: passwordHash,
		tokens:       tokens,
		revocations:  revocations,
		now:          time.Now,
	}
}

// Login confere a senha e abre uma sessão.
func (g *Gate) Login(ctx context.Context, secret string) (*Session, error) {
	if g.passwordHash == "" {
		return nil, ErrNotConfigured
	}
	if !Verify(secret, g.passwordHash) {
		return nil, ErrInvalidCredentials
	}
	return g.tokens.Issue(g.now())
}

// Authenticate valida o token e confirma que a sessão não foi encerrada.
func (g *Gate) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := g.tokens.Parse(token, g.now())
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if g.revocations != nil {
		revoked, err := g.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Redis fora não derruba o acesso; o token ainda expira sozinho
			log.Warn().Err(err).Msg("falha ao consultar sessões revogadas")
		} else if revoked {
			return nil, ErrUnauthenticated
		}
	}

	s := &Session{ID: claims.ID, Token: token}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Logout encerra a sessão até o fim da sua validade.
func (g *Gate) Logout(ctx context.Context, s *Session) error {
	if s == nil || g.revocations == nil {
		return nil
	}
	return g.revocations.Revoke(ctx, s.ID, s.ExpiresAt.Sub(g.now()))
}
