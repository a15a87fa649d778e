// Package chat contains the interactive conversation command.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rmarinho/granabot/cmd/root"
	"rmarinho/granabot/internal/debtmatcher"
	"rmarinho/granabot/internal/dialogue"
	"rmarinho/granabot/internal/ledger"
	"rmarinho/granabot/internal/llm"
	"rmarinho/granabot/internal/router"
	"rmarinho/granabot/internal/session"
)

var sender string

// Cmd is the chat command.
var Cmd = &cobra.Command{
	Use:   "chat",
	Short: "Conversa com o assistente pelo terminal.",
	Long: `Abre um loop de conversa no terminal: cada linha digitada é tratada
como uma mensagem do remetente e respondida na hora. Ctrl+D encerra.`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVar(&sender, "sender", "local", "Identidade do remetente das mensagens")
}

func run(cmd *cobra.Command, args []string) error {
	cfg := root.Config()
	log := root.Logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := ledger.NewSheetsStore(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile, log)
	if err != nil {
		return fmt.Errorf("connecting to spreadsheet: %w", err)
	}
	model, err := llm.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, log)
	if err != nil {
		return fmt.Errorf("connecting to model: %w", err)
	}
	defer model.Close()

	taxonomy, err := llm.LoadTaxonomy(cfg.Categories.File)
	if err != nil {
		log.WithError(err).Warn("Failed to load category taxonomy, using defaults")
	}

	ctrl := dialogue.New(store, session.NewStore(), model, cfg, log)
	r := router.New(ctrl, debtmatcher.New(log), store, model, taxonomy, cfg, log)

	log.WithField("sender", sender).Info("Chat started")
	fmt.Println("granabot pronto. Digite sua mensagem (Ctrl+D para sair).")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		msgCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
		reply := r.Handle(msgCtx, sender, text)
		cancel()

		fmt.Println(reply)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	fmt.Println("Até mais! 👋")
	return nil
}
