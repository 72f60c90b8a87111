package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/demandas/internal/checklist"
)

// ListChecklist devolve as tarefas agrupadas por dia.
func (h *Handler) ListChecklist(w http.ResponseWriter, r *http.Request) {
	dias, err := h.checklist.Dias(r.Context())
	if err != nil {
		writeChecklistError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"hoje": h.checklist.Today().Format(checklist.DateLayout),
		"dias": dias,
	})
}

// CreateTarefa adiciona uma tarefa ao dia corrente.
func (h *Handler) CreateTarefa(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Titulo string `json:"titulo"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	item, err := h.checklist.Create(r.Context(), payload.Titulo)
	if err != nil {
		writeChecklistError(w, err)
		return
	}

	WriteJSONAviso(w, http.StatusCreated, map[string]any{"tarefa": item}, "Tarefa adicionada")
}

// ToggleTarefa inverte o estado de conclusão.
func (h *Handler) ToggleTarefa(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	item, err := h.checklist.Toggle(r.Context(), id)
	if err != nil {
		writeChecklistError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"tarefa": item})
}

// DeleteTarefa remove a tarefa.
func (h *Handler) DeleteTarefa(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.checklist.Delete(r.Context(), id); err != nil {
		writeChecklistError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeChecklistError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checklist.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Tarefa não encontrada", nil)
	case errors.Is(err, checklist.ErrTituloVazio):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("falha no checklist")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao processar tarefa", nil)
	}
}
