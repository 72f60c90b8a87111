package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/gestaozabele/demandas/internal/http/middleware"
	"github.com/gestaozabele/demandas/internal/nota"
	"github.com/gestaozabele/demandas/internal/util"
)

const previewLen = 60

type notaItem struct {
	nota.Nota
	Preview string `json:"preview"`
}

// ListNotas lista as anotações, mais recentes primeiro.
func (h *Handler) ListNotas(w http.ResponseWriter, r *http.Request) {
	notas, err := h.notas.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("falha ao listar anotações")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar anotações", nil)
		return
	}

	items := make([]notaItem, 0, len(notas))
	for _, n := range notas {
		items = append(items, notaItem{Nota: n, Preview: n.Preview(previewLen)})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"notas": items})
}

// CreateNota cria uma anotação vazia e a abre no editor da sessão.
func (h *Handler) CreateNota(w http.ResponseWriter, r *http.Request) {
	n, err := h.notas.Create(r.Context())
	if err != nil {
		writeNotaError(w, err)
		return
	}

	data := map[string]any{"nota": n}
	if h.editores != nil {
		snap, err := h.editores.Get(httpmiddleware.GetSubject(r.Context())).Select(r.Context(), n.ID)
		if err != nil {
			log.Warn().Err(err).Str("nota_id", n.ID.String()).Msg("anotação criada mas não aberta no editor")
		}
		data["editor"] = snap
	}

	WriteJSONAviso(w, http.StatusCreated, data, "Nova anotação criada")
}

// SaveNota grava o conteúdo imediatamente, sem passar pelo editor.
func (h *Handler) SaveNota(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Conteudo string `json:"conteudo"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	n, err := h.notas.Save(r.Context(), id, payload.Conteudo)
	if err != nil {
		writeNotaError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"nota": n})
}

// DeleteNota exclui a anotação e a fecha nos editores abertos.
func (h *Handler) DeleteNota(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.notas.Delete(r.Context(), id); err != nil {
		writeNotaError(w, err)
		return
	}
	if h.editores != nil {
		h.editores.Forget(id)
	}

	WriteJSONAviso(w, http.StatusOK, map[string]string{"status": "deleted"}, "Anotação excluída")
}

// EditorState devolve o estado do editor da sessão.
func (h *Handler) EditorState(w http.ResponseWriter, r *http.Request) {
	if h.editores == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"editor": nota.Snapshot{Estado: nota.StateIdle}})
		return
	}
	snap := h.editores.Get(httpmiddleware.GetSubject(r.Context())).Snapshot()
	WriteJSON(w, http.StatusOK, map[string]any{"editor": snap})
}

// EditorSelect troca a anotação aberta, gravando antes o que estiver pendente.
func (h *Handler) EditorSelect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NotaID string `json:"nota_id"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	id, err := util.ParseID(payload.NotaID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "nota_id inválido", nil)
		return
	}
	if h.editores == nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "editor indisponível", nil)
		return
	}

	snap, err := h.editores.Get(httpmiddleware.GetSubject(r.Context())).Select(r.Context(), id)
	if err != nil {
		if errors.Is(err, nota.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "Anotação não encontrada", nil)
			return
		}
		log.Error().Err(err).Msg("falha ao trocar anotação")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "Erro ao salvar anotação", map[string]any{"editor": snap})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"editor": snap})
}

// EditorChange registra o texto digitado; a gravação ocorre após a pausa.
func (h *Handler) EditorChange(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Conteudo string `json:"conteudo"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if h.editores == nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "editor indisponível", nil)
		return
	}

	snap, err := h.editores.Get(httpmiddleware.GetSubject(r.Context())).Change(payload.Conteudo)
	if err != nil {
		if errors.Is(err, nota.ErrSemSelecao) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "Erro ao salvar anotação", nil)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]any{"editor": snap})
}

func writeNotaError(w http.ResponseWriter, err error) {
	if errors.Is(err, nota.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Anotação não encontrada", nil)
		return
	}
	log.Error().Err(err).Msg("falha ao processar anotação")
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "Erro ao salvar anotação", nil)
}
