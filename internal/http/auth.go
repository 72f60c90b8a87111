package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/demandas/internal/auth"
	httpmiddleware "github.com/gestaozabele/demandas/internal/http/middleware"
)

// Login troca a senha da equipe por um token de sessão.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Senha string `json:"senha"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	session, err := h.gate.Login(r.Context(), payload.Senha)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			WriteError(w, http.StatusUnauthorized, "AUTH", "Senha incorreta", nil)
		case errors.Is(err, auth.ErrNotConfigured):
			WriteError(w, http.StatusServiceUnavailable, "INTERNAL", err.Error(), nil)
		default:
			log.Error().Err(err).Msg("falha ao abrir sessão")
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao autenticar", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": session.Token,
		"expires_at":   session.ExpiresAt,
	})
}

// Logout encerra a sessão e grava anotações pendentes dela.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session := httpmiddleware.GetSession(r.Context())
	if session == nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão ausente", nil)
		return
	}

	if h.editores != nil {
		if err := h.editores.Drop(r.Context(), session.ID); err != nil {
			log.Warn().Err(err).Str("sessao", session.ID).Msg("anotação pendente não gravada no logout")
		}
	}
	if err := h.gate.Logout(r.Context(), session); err != nil {
		log.Error().Err(err).Msg("falha ao revogar sessão")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao encerrar sessão", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Sessao confirma que o token ainda vale.
func (h *Handler) Sessao(w http.ResponseWriter, r *http.Request) {
	session := httpmiddleware.GetSession(r.Context())
	if session == nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão ausente", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"autenticado": true,
		"expires_at":  session.ExpiresAt,
	})
}
