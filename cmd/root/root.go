// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"rmarinho/granabot/internal/config"
	"rmarinho/granabot/internal/logging"
)

var (
	cfg *config.Config
	log logging.Logger = logging.Discard

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "granabot",
		Short: "Assistente financeiro conversacional sobre planilhas.",
		Long: `granabot é um assistente financeiro pessoal em português: registra
gastos, receitas, dívidas e metas em planilhas e responde perguntas
sobre eles em linguagem natural.`,
		Run: func(cmd *cobra.Command, args []string) {
			log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			cfg = loaded
			log = logging.New(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}
)

// Config returns the configuration loaded by PersistentPreRunE. It is only
// valid inside a command Run.
func Config() *config.Config {
	return cfg
}

// Logger returns the configured logger.
func Logger() logging.Logger {
	return log
}
