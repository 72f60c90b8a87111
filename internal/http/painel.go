package http

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gestaozabele/demandas/internal/checklist"
	"github.com/gestaozabele/demandas/internal/demanda"
)

// Painel monta a tela inicial: contadores, demandas filtradas e checklist de hoje.
func (h *Handler) Painel(w http.ResponseWriter, r *http.Request) {
	filtro, err := parseFiltro(r.URL.Query(), h.demandas.Now(), h.demandas.Location())
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	var (
		listagem *demanda.Listagem
		dias     []checklist.Dia
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		listagem, err = h.demandas.List(ctx, filtro)
		return err
	})
	g.Go(func() error {
		var err error
		dias, err = h.checklist.Dias(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("falha ao montar painel")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar o painel", nil)
		return
	}

	hoje := checklist.Dia{Data: h.checklist.Today().Format(checklist.DateLayout), Itens: []checklist.Item{}}
	for _, d := range dias {
		if d.Data == hoje.Data {
			hoje = d
			break
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"contadores": listagem.Contadores,
		"demandas":   listagem.Demandas,
		"hoje":       hoje,
	})
}
