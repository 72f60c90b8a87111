package alerta

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaozabele/demandas/internal/config"
	"github.com/gestaozabele/demandas/internal/demanda"
)

// Source fornece as demandas atrasadas no momento.
type Source interface {
	Atrasadas(ctx context.Context) ([]demanda.View, error)
}

// Resultado resume uma execução.
type Resultado struct {
	Atrasadas int `json:"atrasadas"`
	Enviados  int `json:"enviados"`
	Repetidos int `json:"repetidos"`
	Falhas    int `json:"falhas"`
}

// Service avisa periodicamente sobre demandas atrasadas.
type Service struct {
	source   Source
	dedupe   Deduper
	notifier Notifier
	cfg      config.AlertasConfig
	loc      *time.Location
	logger   zerolog.Logger
	now      func() time.Time

	once   sync.Once
	cancel context.CancelFunc
}

// NewService cria o serviço; notifier nil apenas registra no log.
func NewService(source Source, dedupe Deduper, notifier Notifier, cfg config.AlertasConfig, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		source:   source,
		dedupe:   dedupe,
		notifier: notifier,
		cfg:      cfg,
		loc:      loc,
		logger:   logger.With().Str("component", "alerta").Logger(),
		now:      time.Now,
	}
}

// Start inicia o loop periódico. Pode ser chamado mais de uma vez.
func (s *Service) Start(parent context.Context) {
	if !s.cfg.Enabled {
		return
	}
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.cancel = cancel
		go s.runLoop(ctx)
	})
}

// Stop encerra o loop.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service) runLoop(ctx context.Context) {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("alerta: loop iniciado")

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("alerta: primeira execução falhou")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("alerta: loop encerrado")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("alerta: execução periódica falhou")
			}
		}
	}
}

// RunOnce avisa sobre cada demanda atrasada ainda não avisada hoje.
func (s *Service) RunOnce(ctx context.Context) (*Resultado, error) {
	atrasadas, err := s.source.Atrasadas(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar atrasadas: %w", err)
	}

	res := &Resultado{Atrasadas: len(atrasadas)}
	dia := s.now().In(s.loc).Format("2006-01-02")

	for _, v := range atrasadas {
		key := dedupeKey(v.ID, dia)
		claimed := false
		if s.dedupe != nil {
			first, err := s.dedupe.First(ctx, key)
			if err != nil {
				s.logger.Warn().Err(err).Str("demanda", v.ID.String()).Msg("alerta: dedupe indisponível")
			} else if !first {
				res.Repetidos++
				continue
			}
			claimed = err == nil
		}

		msg := mensagemAtrasada(v)
		if s.notifier == nil {
			s.logger.Warn().Str("demanda", v.ID.String()).Str("glpi", v.NumeroGLPI).Msg(msg.Titulo)
			res.Enviados++
			continue
		}
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.logger.Error().Err(err).Str("demanda", v.ID.String()).Msg("alerta: envio falhou")
			res.Falhas++
			// libera a chave para a próxima execução tentar de novo
			if claimed {
				if err := s.dedupe.Release(ctx, key); err != nil {
					s.logger.Warn().Err(err).Str("demanda", v.ID.String()).Msg("alerta: falha ao liberar dedupe")
				}
			}
			continue
		}
		res.Enviados++
	}

	s.logger.Info().
		Int("atrasadas", res.Atrasadas).
		Int("enviados", res.Enviados).
		Int("repetidos", res.Repetidos).
		Int("falhas", res.Falhas).
		Msg("alerta: execução concluída")

	return res, nil
}

func mensagemAtrasada(v demanda.View) Mensagem {
	titulo := "Demanda atrasada: " + v.Titulo
	if v.NumeroGLPI != "" {
		titulo = fmt.Sprintf("Demanda atrasada: %s %s", v.NumeroGLPI, v.Titulo)
	}
	texto := "Status: " + v.Status + " | Prioridade: " + v.Prioridade
	if v.PrazoInfo != nil {
		texto = v.PrazoInfo.Texto + " | " + texto
	}
	sev := SeveridadeAviso
	if v.Prioridade == demanda.PrioridadeHighst {
		sev = SeveridadeCritica
	}
	return Mensagem{Titulo: titulo, Texto: texto, Severidade: sev}
}
