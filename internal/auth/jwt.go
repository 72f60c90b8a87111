package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenSubject  = "equipe"
	tokenAudience = "demandas"
)

// Claims do token de sessão; o ID (jti) identifica a sessão.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager emite e valida tokens de sessão HS256.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager cria o gerenciador com segredo e duração da sessão.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL devolve a duração configurada das sessões.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue cria o token de uma nova sessão a partir de now.
func (m *TokenManager) Issue(now time.Time) (*Session, error) {
	now = now.UTC()
	exp := now.Add(m.ttl)
	jti := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tokenSubject,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, err
	}

	return &Session{ID: jti, Token: signed, ExpiresAt: exp}, nil
}

// Parse verifica assinatura, audiência e expiração em relação a now.
func (m *TokenManager) Parse(tokenString string, now time.Time) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, errors.New("token inválido")
	}

	return claims, nil
}
