package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/demandas/internal/demanda"
	"github.com/gestaozabele/demandas/internal/ia"
	"github.com/gestaozabele/demandas/internal/util"
)

const dateLayout = "2006-01-02"

type demandaPayload struct {
	NumeroGLPI string  `json:"numero_glpi"`
	Titulo     string  `json:"titulo"`
	Descricao  string  `json:"descricao"`
	Prioridade string  `json:"prioridade"`
	Status     string  `json:"status"`
	Prazo      *string `json:"prazo"`
	Anotacoes  string  `json:"anotacoes"`
	Situacao   *string `json:"situacao"`
}

func (p demandaPayload) input() (demanda.Input, error) {
	in := demanda.Input{
		NumeroGLPI: p.NumeroGLPI,
		Titulo:     p.Titulo,
		Descricao:  p.Descricao,
		Prioridade: p.Prioridade,
		Status:     p.Status,
		Anotacoes:  p.Anotacoes,
		Situacao:   p.Situacao,
	}
	if p.Prazo != nil && strings.TrimSpace(*p.Prazo) != "" {
		prazo, err := time.Parse(dateLayout, strings.TrimSpace(*p.Prazo))
		if err != nil {
			return in, errors.New("prazo inválido, use AAAA-MM-DD")
		}
		in.Prazo = &prazo
	}
	return in, nil
}

// ListDemandas lista as demandas principais com filtros e contadores.
func (h *Handler) ListDemandas(w http.ResponseWriter, r *http.Request) {
	filtro, err := parseFiltro(r.URL.Query(), h.demandas.Now(), h.demandas.Location())
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	listagem, err := h.demandas.List(r.Context(), filtro)
	if err != nil {
		log.Error().Err(err).Msg("falha ao listar demandas")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar demandas", nil)
		return
	}

	WriteJSON(w, http.StatusOK, listagem)
}

// CreateDemanda cadastra uma demanda.
func (h *Handler) CreateDemanda(w http.ResponseWriter, r *http.Request) {
	var payload demandaPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	in, err := payload.input()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	d, err := h.demandas.Create(r.Context(), in)
	if err != nil {
		writeDemandaError(w, err)
		return
	}

	WriteJSONAviso(w, http.StatusCreated, map[string]any{"demanda": d}, "Demanda criada!")
}

// GetDemanda devolve a demanda com suas variações.
func (h *Handler) GetDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	v, err := h.demandas.Get(r.Context(), id)
	if err != nil {
		writeDemandaError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"demanda": v})
}

// UpdateDemanda regrava o formulário completo.
func (h *Handler) UpdateDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload demandaPayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	in, err := payload.input()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	d, err := h.demandas.Update(r.Context(), id, in)
	if err != nil {
		writeDemandaError(w, err)
		return
	}

	WriteJSONAviso(w, http.StatusOK, map[string]any{"demanda": d}, "Demanda atualizada!")
}

// PatchDemanda altera status, prioridade ou situação direto na tabela.
func (h *Handler) PatchDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Campo string `json:"campo"`
		Valor string `json:"valor"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	d, err := h.demandas.UpdateField(r.Context(), id, strings.TrimSpace(payload.Campo), payload.Valor)
	if err != nil {
		writeDemandaError(w, err)
		return
	}

	WriteJSONAviso(w, http.StatusOK, map[string]any{"demanda": d}, "Atualizado com sucesso!")
}

// SaveAnotacoes grava as anotações da demanda.
func (h *Handler) SaveAnotacoes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Anotacoes string `json:"anotacoes"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	d, err := h.demandas.SaveAnotacoes(r.Context(), id, payload.Anotacoes)
	if err != nil {
		writeDemandaError(w, err)
		return
	}

	WriteJSONAviso(w, http.StatusOK, map[string]any{"demanda": d}, "Anotações salvas!")
}

// CreateVariacao cria uma variação da demanda.
func (h *Handler) CreateVariacao(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	d, err := h.demandas.CreateVariacao(r.Context(), id)
	if err != nil {
		writeDemandaError(w, err)
		return
	}

	WriteJSONAviso(w, http.StatusCreated, map[string]any{"demanda": d}, "Variação criada!")
}

// DeleteDemanda remove a demanda; as variações passam a ser principais.
func (h *Handler) DeleteDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.demandas.Delete(r.Context(), id); err != nil {
		writeDemandaError(w, err)
		return
	}

	WriteJSONAviso(w, http.StatusOK, map[string]string{"status": "deleted"}, "Demanda excluída")
}

// BulkStatus aplica um status às demandas selecionadas.
func (h *Handler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs    []string `json:"ids"`
		Status string   `json:"status"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	ids, err := util.ParseIDs(payload.IDs)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	n, err := h.demandas.BulkUpdateStatus(r.Context(), ids, payload.Status)
	if err != nil {
		writeDemandaError(w, err)
		return
	}

	// seleção limpa para o cliente descartar os ids marcados
	WriteJSONAviso(w, http.StatusOK, map[string]any{
		"selecionados": []string{},
		"status_alvo":  "",
		"atualizadas":  n,
	}, "Atualizado com sucesso!")
}

// SugerirDemanda pede ao provedor de IA um rascunho do formulário.
func (h *Handler) SugerirDemanda(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	if h.ia == nil {
		WriteError(w, http.StatusBadGateway, "AI_UNAVAILABLE", "Erro ao gerar com IA", nil)
		return
	}

	s, err := h.ia.Suggest(r.Context(), payload.Prompt)
	if err != nil {
		if errors.Is(err, ia.ErrPromptVazio) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusBadGateway, "AI_UNAVAILABLE", "Erro ao gerar com IA", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"sugestao": s})
}

func writeDemandaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, demanda.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "Demanda não encontrada", nil)
	case errors.Is(err, demanda.ErrPartialBulkUpdate):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, demanda.ErrValidation):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "Preencha todos os campos obrigatórios", map[string]string{"motivo": err.Error()})
	case demanda.IsValidationError(err):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("falha ao processar demanda")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao processar demanda", nil)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := util.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseFiltro lê os filtros da query; datas são dias de calendário em loc.
func parseFiltro(q url.Values, now time.Time, loc *time.Location) (demanda.Filtro, error) {
	f := demanda.Filtro{
		Busca:      strings.TrimSpace(q.Get("busca")),
		GLPI:       strings.TrimSpace(q.Get("glpi")),
		Status:     strings.TrimSpace(q.Get("status")),
		Prioridade: strings.TrimSpace(q.Get("prioridade")),
		Situacao:   strings.TrimSpace(q.Get("situacao")),
	}

	if f.Status != "" && !demanda.IsValidStatus(f.Status) {
		return f, demanda.ErrInvalidStatus
	}
	if f.Prioridade != "" && !demanda.IsValidPrioridade(f.Prioridade) {
		return f, demanda.ErrInvalidPriority
	}
	if f.Situacao != "" && !demanda.IsValidSituacao(f.Situacao) {
		return f, demanda.ErrInvalidSituacao
	}

	if raw := strings.TrimSpace(q.Get("mes_ativo")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.New("mes_ativo inválido")
		}
		f.MesAtivo = v
	}
	if f.MesAtivo {
		atual := now.In(loc)
		f.Mes, f.Ano = atual.Month(), atual.Year()
		if raw := strings.TrimSpace(q.Get("mes")); raw != "" {
			m, err := strconv.Atoi(raw)
			if err != nil || m < 1 || m > 12 {
				return f, errors.New("mes inválido")
			}
			f.Mes = time.Month(m)
		}
		if raw := strings.TrimSpace(q.Get("ano")); raw != "" {
			a, err := strconv.Atoi(raw)
			if err != nil || a < 1 {
				return f, errors.New("ano inválido")
			}
			f.Ano = a
		}
	}

	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"de", &f.CriadoDe}, {"ate", &f.CriadoAte}} {
		raw := strings.TrimSpace(q.Get(p.key))
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return f, fmt.Errorf("%s inválido, use AAAA-MM-DD", p.key)
		}
		*p.dst = &t
	}

	return f, nil
}
