package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmarinho/granabot/internal/config"
	"rmarinho/granabot/internal/debtmatcher"
	"rmarinho/granabot/internal/dialogue"
	"rmarinho/granabot/internal/ledger"
	"rmarinho/granabot/internal/llm"
	"rmarinho/granabot/internal/logging"
	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/session"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestRouter(store *ledger.MockStore, model *llm.MockClient) *Router {
	cfg := &config.Config{}
	cfg.Sheets.Expenses = "Gastos"
	cfg.Sheets.Income = "Receitas"
	cfg.Sheets.Debts = "Dívidas"
	cfg.Sheets.Goals = "Metas"

	d := dialogue.New(store, session.NewStore(), model, cfg, logging.Discard)
	m := debtmatcher.New(logging.Discard)
	r := New(d, m, store, model, llm.Taxonomy{}, cfg, logging.Discard)
	r.now = func() time.Time { return testNow }
	return r
}

func seedLedgers(store *ledger.MockStore) {
	store.Seed("Gastos", [][]string{
		{"Data", "Descrição", "Valor", "Categoria", "Subcategoria", "Método", "Recorrente", "Obs"},
		{"05/03/2026", "Mercado", "250.00", "Alimentação", "", "Pix", "Não", ""},
		{"10/03/2026", "Restaurante", "120.00", "Alimentação", "", "Débito", "Não", ""},
	})
	store.Seed("Receitas", [][]string{
		{"Data", "Descrição", "Valor", "Categoria", "Método", "Recorrente", "Obs"},
		{"01/03/2026", "Salário", "5000.00", "Salário", "Pix", "Sim", ""},
	})
	store.Seed("Dívidas", [][]string{make([]string, models.DebtColumns)})
	store.Seed("Metas", [][]string{make([]string, models.GoalColumns)})
}

func TestHandleExpenseIntent(t *testing.T) {
	store := ledger.NewMockStore()
	seedLedgers(store)
	model := &llm.MockClient{Structured: []map[string]any{{
		"intent": "registrar_gasto",
		"parameters": map[string]any{
			"transacao": map[string]any{
				"descricao": "Almoço",
				"valor":     float64(45.9),
				"categoria": "Alimentação",
				"metodo":    "pix",
			},
		},
	}}}
	r := newTestRouter(store, model)

	reply := r.Handle(context.Background(), "ana", "gastei 45,90 no almoço no pix")
	assert.Contains(t, reply, "Gasto anotado")

	rows := store.DataRows("Gastos")
	require.Len(t, rows, 3)
	last := rows[2]
	assert.Equal(t, "Almoço", last[models.ExpenseColDescription])
	assert.Equal(t, "45.90", last[models.ExpenseColAmount])
	assert.Equal(t, models.MethodPix, last[models.ExpenseColMethod])
	assert.Equal(t, "15/03/2026", last[models.ExpenseColDate])
}

func TestHandleBatchIntent(t *testing.T) {
	store := ledger.NewMockStore()
	seedLedgers(store)
	model := &llm.MockClient{Structured: []map[string]any{{
		"intent": "registrar_transacoes",
		"parameters": map[string]any{
			"transacoes": []any{
				map[string]any{"descricao": "Mercado", "valor": float64(200), "tipo": "gasto", "metodo": "pix"},
				map[string]any{"descricao": "Freela", "valor": float64(800), "tipo": "receita", "metodo": "pix"},
			},
		},
	}}}
	r := newTestRouter(store, model)

	ctx := context.Background()
	reply := r.Handle(ctx, "ana", "mercado 200 no pix e recebi 800 do freela")
	assert.Contains(t, reply, "Encontrei 2 lançamentos")

	// The confirmation goes through the session, not the classifier.
	reply = r.Handle(ctx, "ana", "sim")
	assert.Contains(t, reply, "Salvei 2 lançamentos")
	assert.Len(t, store.DataRows("Gastos"), 3)
	assert.Len(t, store.DataRows("Receitas"), 2)
	assert.Len(t, model.Prompts, 1, "only the first message should be classified")
}

func TestHandleStartsCreationFlows(t *testing.T) {
	for intent, want := range map[string]string{
		"criar_divida": "nome da dívida",
		"criar_meta":   "nome da meta",
	} {
		store := ledger.NewMockStore()
		seedLedgers(store)
		model := &llm.MockClient{Structured: []map[string]any{{"intent": intent}}}
		r := newTestRouter(store, model)

		reply := r.Handle(context.Background(), "ana", "quero cadastrar")
		assert.Contains(t, reply, want)
	}
}

func TestHandleDebtPaymentIntent(t *testing.T) {
	store := ledger.NewMockStore()
	seedLedgers(store)
	debt := models.DebtRecord{
		Name: "Dívida do Pedro", Creditor: "Pedro",
		OriginalAmount: decimal.RequireFromString("200"), CurrentBalance: decimal.RequireFromString("100"),
		Status: models.DebtStatusOnTime,
	}
	store.Seed("Dívidas", [][]string{make([]string, models.DebtColumns), debt.ToRow()})

	model := &llm.MockClient{Structured: []map[string]any{{
		"intent":     "pagar_divida",
		"parameters": map[string]any{"divida": "pedro", "valor": float64(30)},
	}}}
	r := newTestRouter(store, model)

	reply := r.Handle(context.Background(), "ana", "paguei 30 da dívida do pedro")
	assert.Contains(t, reply, "Pagamento de R$ 30,00")

	d := models.DebtFromRow(store.DataRows("Dívidas")[0])
	assert.Equal(t, "70.00", d.CurrentBalance.StringFixed(2))
}

func TestHandleDebtUpdateSkipsClassifier(t *testing.T) {
	store := ledger.NewMockStore()
	seedLedgers(store)
	debt := models.DebtRecord{
		Name: "Dívida do Pedro", Creditor: "Pedro",
		OriginalAmount: decimal.RequireFromString("200"), CurrentBalance: decimal.RequireFromString("100"),
	}
	store.Seed("Dívidas", [][]string{make([]string, models.DebtColumns), debt.ToRow()})

	model := &llm.MockClient{}
	r := newTestRouter(store, model)

	reply := r.Handle(context.Background(), "ana", "atualiza a dívida do pedro para 70")
	assert.Contains(t, reply, "atualizado")
	assert.Empty(t, model.Prompts, "update commands resolve without the model")

	d := models.DebtFromRow(store.DataRows("Dívidas")[0])
	assert.Equal(t, "70.00", d.CurrentBalance.StringFixed(2))
}

func TestHandleAnalyticsIntent(t *testing.T) {
	store := ledger.NewMockStore()
	seedLedgers(store)
	model := &llm.MockClient{Structured: []map[string]any{{
		"intent":     "total_gastos_categoria_mes",
		"parameters": map[string]any{"categoria": "Alimentação", "mes": float64(2), "ano": float64(2026)},
	}}}
	r := newTestRouter(store, model)

	reply := r.Handle(context.Background(), "ana", "quanto gastei com alimentação em março?")
	assert.Contains(t, reply, "R$ 370,00")
}

func TestHandleGenericQuestion(t *testing.T) {
	store := ledger.NewMockStore()
	seedLedgers(store)
	model := &llm.MockClient{
		Structured: []map[string]any{{"intent": "pergunta_geral"}},
		Texts:      []string{"Guardar 10% do salário todo mês é um ótimo começo."},
	}
	r := newTestRouter(store, model)

	reply := r.Handle(context.Background(), "ana", "como começo a investir?")
	assert.Equal(t, "Guardar 10% do salário todo mês é um ótimo começo.", reply)
}

func TestHandleClassifierFailure(t *testing.T) {
	store := ledger.NewMockStore()
	seedLedgers(store)
	model := &llm.MockClient{Err: errors.New("quota exceeded")}
	r := newTestRouter(store, model)

	reply := r.Handle(context.Background(), "ana", "qualquer coisa")
	assert.Equal(t, msgClassifyError, reply)
}

func TestHandleAnalyticsReadFailure(t *testing.T) {
	store := ledger.NewMockStore()
	store.FailReads = true
	model := &llm.MockClient{Structured: []map[string]any{{
		"intent":     "saldo_do_mes",
		"parameters": map[string]any{},
	}}}
	r := newTestRouter(store, model)

	reply := r.Handle(context.Background(), "ana", "qual meu saldo?")
	assert.Equal(t, msgReadError, reply)
}

func TestHandleSessionTakesPrecedence(t *testing.T) {
	store := ledger.NewMockStore()
	seedLedgers(store)
	model := &llm.MockClient{Structured: []map[string]any{{"intent": "criar_meta"}}}
	r := newTestRouter(store, model)

	ctx := context.Background()
	r.Handle(ctx, "ana", "quero criar uma meta")
	reply := r.Handle(ctx, "ana", "Reserva de emergência")
	assert.Contains(t, reply, "valor que você quer alcançar")
	assert.Len(t, model.Prompts, 1, "mid-flow answers must not be classified")
}

