package http

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// RunAlertas executa a verificação de atrasadas sob demanda.
func (h *Handler) RunAlertas(w http.ResponseWriter, r *http.Request) {
	if h.alertas == nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "alertas desativados", nil)
		return
	}

	res, err := h.alertas.RunOnce(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("falha ao executar alertas")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "falha ao verificar atrasadas", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"resultado": res})
}
