package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/demandas/internal/alerta"
	"github.com/gestaozabele/demandas/internal/auth"
	"github.com/gestaozabele/demandas/internal/checklist"
	"github.com/gestaozabele/demandas/internal/config"
	"github.com/gestaozabele/demandas/internal/db"
	"github.com/gestaozabele/demandas/internal/demanda"
	internalhttp "github.com/gestaozabele/demandas/internal/http"
	"github.com/gestaozabele/demandas/internal/ia"
	"github.com/gestaozabele/demandas/internal/logger"
	"github.com/gestaozabele/demandas/internal/nota"
)

const (
	editorIdleTTL   = 30 * time.Minute
	editorSweep     = time.Minute
	alertaDedupeTTL = 36 * time.Hour
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	logger.Init(config.LoadLog())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Init(cfg.Log)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("schema aplicado")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	var cache demanda.ListCache
	if cfg.DemandasCache > 0 {
		cache = demanda.NewRedisListCache(redisClient, cfg.DemandasCache)
	}
	demandas := demanda.NewService(demanda.NewRepository(pool), cache, cfg.Location)

	notaRepo := nota.NewRepository(pool)
	notas := nota.NewService(notaRepo)
	editores := nota.NewEditorPool(notas, nota.SystemClock, cfg.Notas.Debounce, cfg.Notas.SavedHold, editorIdleTTL)
	go editores.Run(ctx, editorSweep)

	tarefas := checklist.NewService(checklist.NewRepository(pool), cfg.Location)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	gate := auth.NewGate(cfg.PasswordHash, tokens, auth.NewRedisRevocations(redisClient))

	suggester := ia.NewClient(cfg.IA, demanda.IsValidPrioridade)
	if !suggester.Enabled() {
		log.Warn().Msg("chave da IA ausente, sugestões desativadas")
	}

	var notifier alerta.Notifier
	if slack := alerta.NewSlackNotifier(cfg.Alertas.SlackWebhookURL); slack != nil {
		notifier = slack
	}
	alertas := alerta.NewService(demandas, alerta.NewRedisDeduper(redisClient, alertaDedupeTTL), notifier, cfg.Alertas, cfg.Location, log.Logger)
	alertas.Start(ctx)
	defer alertas.Stop()

	handler := internalhttp.NewRouter(internalhttp.Deps{
		Config:    cfg,
		Gate:      gate,
		Demandas:  demandas,
		Notas:     notas,
		Editores:  editores,
		Checklist: tarefas,
		IA:        suggester,
		Alertas:   alertas,
		Checks: map[string]internalhttp.Check{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	// grava textos pendentes antes de fechar o pool do banco
	editores.Close(shutdownCtx)
	return err
}
