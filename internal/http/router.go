package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gestaozabele/demandas/internal/alerta"
	"github.com/gestaozabele/demandas/internal/auth"
	"github.com/gestaozabele/demandas/internal/checklist"
	"github.com/gestaozabele/demandas/internal/config"
	"github.com/gestaozabele/demandas/internal/demanda"
	httpmiddleware "github.com/gestaozabele/demandas/internal/http/middleware"
	"github.com/gestaozabele/demandas/internal/ia"
	"github.com/gestaozabele/demandas/internal/nota"
)

// Suggester gera rascunhos de demanda.
type Suggester interface {
	Suggest(ctx context.Context, prompt string) (*ia.Sugestao, error)
}

// AlertRunner dispara a verificação de atrasadas.
type AlertRunner interface {
	RunOnce(ctx context.Context) (*alerta.Resultado, error)
}

// Check é uma verificação de dependência usada em /ready.
type Check func(ctx context.Context) error

// Deps reúne os serviços usados pelo roteador.
type Deps struct {
	Config    *config.Config
	Gate      *auth.Gate
	Demandas  *demanda.Service
	Notas     *nota.Service
	Editores  *nota.EditorPool
	Checklist *checklist.Service
	IA        Suggester
	Alertas   AlertRunner
	Checks    map[string]Check
}

type Handler struct {
	gate      *auth.Gate
	demandas  *demanda.Service
	notas     *nota.Service
	editores  *nota.EditorPool
	checklist *checklist.Service
	ia        Suggester
	alertas   AlertRunner
	checks    map[string]Check

	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	h := &Handler{
		gate:          d.Gate,
		demandas:      d.Demandas,
		notas:         d.Notas,
		editores:      d.Editores,
		checklist:     d.Checklist,
		ia:            d.IA,
		alertas:       d.Alertas,
		checks:        d.Checks,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Post("/auth/login", h.Login)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(h.gate))
		private.Use(httpmiddleware.SessionRateLimit(h.authLimiter))
		h.Mount(private)
	})

	return r
}

// Mount registra as rotas autenticadas.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/sessao", h.Sessao)

	r.Get("/painel", h.Painel)

	r.Route("/demandas", func(dr chi.Router) {
		dr.Get("/", h.ListDemandas)
		dr.Post("/", h.CreateDemanda)
		dr.Post("/sugestao", h.SugerirDemanda)
		dr.Post("/status", h.BulkStatus)
		dr.Get("/{id}", h.GetDemanda)
		dr.Put("/{id}", h.UpdateDemanda)
		dr.Patch("/{id}", h.PatchDemanda)
		dr.Put("/{id}/anotacoes", h.SaveAnotacoes)
		dr.Post("/{id}/variacoes", h.CreateVariacao)
		dr.Delete("/{id}", h.DeleteDemanda)
	})

	r.Route("/notas", func(nr chi.Router) {
		nr.Get("/", h.ListNotas)
		nr.Post("/", h.CreateNota)
		nr.Get("/editor", h.EditorState)
		nr.Post("/editor/selecionar", h.EditorSelect)
		nr.Post("/editor/conteudo", h.EditorChange)
		nr.Put("/{id}", h.SaveNota)
		nr.Delete("/{id}", h.DeleteNota)
	})

	r.Route("/checklist", func(cr chi.Router) {
		cr.Get("/", h.ListChecklist)
		cr.Post("/", h.CreateTarefa)
		cr.Patch("/{id}/alternar", h.ToggleTarefa)
		cr.Delete("/{id}", h.DeleteTarefa)
	})

	r.Post("/alertas/executar", h.RunAlertas)
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", failures)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("JSON inválido")
	}
	return nil
}
