// Package router is the single entry point for incoming messages. Each
// message first goes to the dialogue controller in case the sender is
// mid-flow; otherwise it is classified, and the resulting intent is routed
// to the dialogue starters, the analytics orchestrator or the generic
// model answer. Failures never leak to the sender as errors, only as
// apologetic replies.
package router

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/analytics"
	"rmarinho/granabot/internal/config"
	"rmarinho/granabot/internal/debtmatcher"
	"rmarinho/granabot/internal/dialogue"
	"rmarinho/granabot/internal/ledger"
	"rmarinho/granabot/internal/llm"
	"rmarinho/granabot/internal/logging"
	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/normalizer"
)

const (
	msgClassifyError = "Tive um problema para entender agora. 😕 Tenta de novo em instantes?"
	msgReadError     = "Não consegui consultar a planilha agora. Tenta de novo daqui a pouco?"
	msgAnswerError   = "Não consegui pensar em uma resposta agora. Tenta de novo?"
)

// Router wires the collaborators together and decides, per message, which
// of them answers.
type Router struct {
	dialogue *dialogue.Controller
	matcher  *debtmatcher.Matcher
	store    ledger.Store
	model    llm.Client
	taxonomy llm.Taxonomy
	cfg      *config.Config
	log      logging.Logger
	now      func() time.Time
}

// New creates a Router.
func New(d *dialogue.Controller, m *debtmatcher.Matcher, store ledger.Store,
	model llm.Client, taxonomy llm.Taxonomy, cfg *config.Config, log logging.Logger) *Router {
	return &Router{
		dialogue: d,
		matcher:  m,
		store:    store,
		model:    model,
		taxonomy: taxonomy,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Handle processes one incoming message and returns the reply text.
func (r *Router) Handle(ctx context.Context, sender, text string) string {
	if reply, ok := r.dialogue.Resume(ctx, sender, text); ok {
		return reply
	}

	// Debt updates are recognized locally, without a model round trip.
	if reply, ok := r.dialogue.StartDebtUpdate(ctx, sender, text, r.matcher); ok {
		return reply
	}

	raw, err := r.model.ClassifyStructured(ctx, llm.BuildClassificationPrompt(r.taxonomy, r.now(), text))
	if err != nil {
		r.log.WithError(err).Error("Classification failed")
		return msgClassifyError
	}
	cls := llm.ParseClassification(raw)
	r.log.WithField("intent", cls.Intent).Debug("Message classified")

	switch cls.Intent {
	case "registrar_gasto":
		return r.dialogue.StartExpense(ctx, sender, r.decodeDraft(cls.Parameters, models.KindExpense))
	case "registrar_receita":
		return r.dialogue.StartIncome(ctx, sender, r.decodeDraft(cls.Parameters, models.KindIncome))
	case "registrar_transacoes":
		return r.dialogue.StartBatch(sender, r.decodeDrafts(cls.Parameters))
	case "criar_divida":
		return r.dialogue.StartDebtFlow(sender)
	case "criar_meta":
		return r.dialogue.StartGoalFlow(sender)
	case "pagar_divida":
		name, _ := cls.Parameters["divida"].(string)
		return r.dialogue.StartDebtPayment(ctx, sender, name, paramAmount(cls.Parameters["valor"]))
	case "deletar_registro":
		descricao, _ := cls.Parameters["descricao"].(string)
		p := analytics.ParamsFrom(cls.Parameters, r.now())
		return r.dialogue.StartDeletion(ctx, sender, descricao, p.Mes, p.Ano)
	}

	if intent := analytics.ParseIntent(cls.Intent); intent != analytics.IntentGeneric {
		return r.runAnalytics(ctx, intent, cls.Parameters, text)
	}
	return r.answerGeneric(ctx, text)
}

func (r *Router) runAnalytics(ctx context.Context, intent analytics.Intent, params map[string]any, text string) string {
	ds, err := r.readDataSources(ctx)
	if err != nil {
		r.log.WithError(err).Error("Failed to read ledgers for analytics")
		return msgReadError
	}
	answer := analytics.Run(analytics.Query{
		Intent: intent,
		Params: analytics.ParamsFrom(params, r.now()),
	}, ds)
	if answer.Generic {
		return r.answerGeneric(ctx, text)
	}
	return answer.Text
}

// readDataSources loads every ledger an aggregate may need, stripping
// header rows.
func (r *Router) readDataSources(ctx context.Context) (analytics.DataSources, error) {
	ds := analytics.DataSources{Cards: make(map[string][][]string)}

	var err error
	if ds.Expenses, err = r.readData(ctx, r.cfg.Sheets.Expenses); err != nil {
		return ds, err
	}
	if ds.Income, err = r.readData(ctx, r.cfg.Sheets.Income); err != nil {
		return ds, err
	}
	if ds.Debts, err = r.readData(ctx, r.cfg.Sheets.Debts); err != nil {
		return ds, err
	}
	if ds.Goals, err = r.readData(ctx, r.cfg.Sheets.Goals); err != nil {
		return ds, err
	}
	for _, card := range r.cfg.Cards {
		rows, err := r.readData(ctx, card.Sheet)
		if err != nil {
			return ds, err
		}
		ds.Cards[card.Name] = rows
	}
	return ds, nil
}

func (r *Router) readData(ctx context.Context, sheet string) ([][]string, error) {
	table, err := r.store.ReadTable(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if len(table) <= 1 {
		return nil, nil
	}
	return table[1:], nil
}

func (r *Router) answerGeneric(ctx context.Context, text string) string {
	reply, err := r.model.AskText(ctx, llm.BuildAnswerPrompt(text))
	if err != nil {
		r.log.WithError(err).Error("Generic answer failed")
		return msgAnswerError
	}
	return reply
}

// draftWire mirrors the transacao object shape the classifier emits.
type draftWire struct {
	Descricao    string   `json:"descricao"`
	Valor        *float64 `json:"valor"`
	Categoria    string   `json:"categoria"`
	Subcategoria string   `json:"subcategoria"`
	Metodo       string   `json:"metodo"`
	Recorrente   bool     `json:"recorrente"`
	Obs          string   `json:"obs"`
	Data         string   `json:"data"`
	Tipo         string   `json:"tipo"`
}

func (r *Router) decodeDraft(params map[string]any, kind models.Kind) models.TransactionDraft {
	var w draftWire
	if raw, ok := params["transacao"]; ok {
		if err := llm.DecodeInto(raw, &w); err != nil {
			r.log.WithError(err).Warn("Malformed transaction payload")
		}
	}
	return w.toDraft(kind)
}

func (r *Router) decodeDrafts(params map[string]any) []models.TransactionDraft {
	var wires []draftWire
	if raw, ok := params["transacoes"]; ok {
		if err := llm.DecodeInto(raw, &wires); err != nil {
			r.log.WithError(err).Warn("Malformed transaction list payload")
			return nil
		}
	}
	drafts := make([]models.TransactionDraft, 0, len(wires))
	for _, w := range wires {
		kind := models.KindExpense
		if w.Tipo == string(models.KindIncome) {
			kind = models.KindIncome
		}
		drafts = append(drafts, w.toDraft(kind))
	}
	return drafts
}

func (w draftWire) toDraft(kind models.Kind) models.TransactionDraft {
	d := models.TransactionDraft{
		Description:   w.Descricao,
		Category:      w.Categoria,
		Subcategory:   w.Subcategoria,
		PaymentMethod: canonicalMethod(w.Metodo),
		Recurring:     w.Recorrente,
		Notes:         w.Obs,
		Kind:          kind,
	}
	if w.Valor != nil {
		v := decimal.NewFromFloat(*w.Valor)
		d.Amount = &v
	}
	if t, ok := normalizer.ParseDateOnly(w.Data); ok {
		d.Date = &t
	}
	return d
}

// canonicalMethod maps whatever the classifier wrote into the canonical
// method values; unknown strings become "ask the user".
func canonicalMethod(s string) string {
	if s == "" {
		return ""
	}
	n := normalizer.Normalize(s)
	switch {
	case n == "credito" || n == "cartao" || n == "cartao de credito":
		return models.MethodCredit
	case n == "debito":
		return models.MethodDebit
	case n == "pix":
		return models.MethodPix
	case n == "dinheiro":
		return models.MethodCash
	default:
		return ""
	}
}

// paramAmount converts a classifier "valor" into a decimal pointer; nil
// means the amount was not mentioned.
func paramAmount(v any) *decimal.Decimal {
	f, ok := v.(float64)
	if !ok || f <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(f)
	return &d
}
