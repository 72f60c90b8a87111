package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gestaozabele/demandas/internal/auth"
	"github.com/gestaozabele/demandas/internal/db"
	"github.com/gestaozabele/demandas/internal/demanda"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o schema (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Msg("schema aplicado")
			return nil
		},
	}
}

func hashpassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hashpass <senha>",
		Short: "Gera o hash argon2id para APP_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.Hash(args[0])
			if err != nil {
				return fmt.Errorf("hash: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func resumoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resumo",
		Short: "Mostra os contadores do painel",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := demandaService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			listagem, err := svc.List(cmd.Context(), demanda.Filtro{})
			if err != nil {
				return fmt.Errorf("listar: %w", err)
			}
			printResumo(cmd, listagem.Contadores)
			return nil
		},
	}
}

func atrasadasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "atrasadas",
		Short: "Lista as demandas com prazo vencido",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := demandaService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			views, err := svc.Atrasadas(cmd.Context())
			if err != nil {
				return fmt.Errorf("listar atrasadas: %w", err)
			}
			printAtrasadas(cmd, views)
			return nil
		},
	}
}

func printResumo(cmd *cobra.Command, c demanda.Contadores) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	bold.Fprintf(out, "Demandas: %d\n", c.Total)
	fmt.Fprintf(out, "  Pendentes:      %d\n", c.Pendentes)
	fmt.Fprintf(out, "  Desenvolvendo:  %d\n", c.Desenvolvendo)
	fmt.Fprintf(out, "  Aguardando:     %d\n", c.Aguardando)
	fmt.Fprintf(out, "  Em correção:    %d\n", c.EmCorrecao)
	color.New(color.FgGreen).Fprintf(out, "  Entregues:      %d\n", c.Entregues)
	if c.Atrasadas > 0 {
		color.New(color.FgRed, color.Bold).Fprintf(out, "  Atrasadas:      %d\n", c.Atrasadas)
	} else {
		fmt.Fprintf(out, "  Atrasadas:      0\n")
	}
}

func printAtrasadas(cmd *cobra.Command, views []demanda.View) {
	out := cmd.OutOrStdout()
	if len(views) == 0 {
		color.New(color.FgGreen).Fprintln(out, "Nenhuma demanda atrasada")
		return
	}

	red := color.New(color.FgRed)
	for _, v := range views {
		prazo := ""
		if v.PrazoInfo != nil {
			prazo = v.PrazoInfo.Texto
		}
		fmt.Fprintf(out, "GLPI %-8s %-10s %s ", v.NumeroGLPI, v.Prioridade, v.Titulo)
		red.Fprintln(out, prazo)
	}
}

func demandaService(ctx context.Context) (*demanda.Service, func(), error) {
	pool, err := connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	loc, err := time.LoadLocation(envOr("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("TIMEZONE inválido: %w", err)
	}
	return demanda.NewService(demanda.NewRepository(pool), nil, loc), pool.Close, nil
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		return nil, errors.New("defina DB_DSN ou DATABASE_URL")
	}
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("não foi possível conectar ao banco: %w", err)
	}
	return pool, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
