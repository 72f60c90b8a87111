package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/demandas/internal/config"
	"github.com/gestaozabele/demandas/internal/logger"
)

func main() {
	logger.Init(config.LoadLog())

	rootCmd := &cobra.Command{
		Use:   "demandasctl",
		Short: "Ferramentas de operação do painel de demandas",
		Long: `demandasctl aplica o schema, gera o hash da senha da equipe
e mostra um resumo das demandas direto do banco.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashpassCmd())
	rootCmd.AddCommand(resumoCmd())
	rootCmd.AddCommand(atrasadasCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
