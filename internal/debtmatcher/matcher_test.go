package debtmatcher

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmarinho/granabot/internal/logging"
)

// debtRow builds a minimal debts-sheet row with name, creditor and balance
// in their ledger positions.
func debtRow(name, creditor, balance string) []string {
	return []string{name, creditor, "", "1000", balance}
}

func newMatcher() *Matcher {
	return New(logging.Discard)
}

func TestRecognized(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Verb and keyword", "atualizar a dívida do Pedro para 70", true},
		{"Accented keyword", "corrigir o empréstimo da Caixa", true},
		{"Another stem", "muda o financiamento pra 900", true},
		{"Verb without keyword", "atualizar meu cadastro", false},
		{"Keyword without verb", "quanto falta da dívida?", false},
		{"Unrelated", "gastei 50 no mercado", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Recognized(tc.input))
		})
	}
}

func TestMatchOldBalanceDisambiguates(t *testing.T) {
	rows := [][]string{
		debtRow("Dívida Pedro A", "Pedro", "100"),
		debtRow("Dívida Pedro B", "Pedro", "200"),
	}

	m := newMatcher().Match("Atualizar dívida do Pedro de 100 para 70", rows)

	require.Equal(t, OutcomeMatched, m.Outcome)
	require.Len(t, m.Candidates, 1)
	assert.Equal(t, 0, m.Candidates[0].RowIndex)
	assert.True(t, m.NewValue.Equal(decimal.NewFromInt(70)))
	require.NotNil(t, m.OldValue)
	assert.True(t, m.OldValue.Equal(decimal.NewFromInt(100)))
}

func TestMatchTiedCandidatesSurfaced(t *testing.T) {
	rows := [][]string{
		debtRow("Dívida Pedro A", "Pedro", "100"),
		debtRow("Dívida Pedro B", "Pedro", "200"),
	}

	m := newMatcher().Match("Atualizar dívida do Pedro para 70", rows)

	require.Equal(t, OutcomeAmbiguous, m.Outcome)
	assert.Len(t, m.Candidates, 2)
	assert.True(t, m.NewValue.Equal(decimal.NewFromInt(70)))
	assert.Nil(t, m.OldValue)
}

func TestMatchMultiTokenPrecisionGuard(t *testing.T) {
	rows := [][]string{
		debtRow("Financiamento Carro", "Banco Azul", "12000"),
		debtRow("Empréstimo Pessoal", "Banco Verde", "3000"),
	}

	// "banco" alone matches both rows, but a two-token reference needs at
	// least two token hits, so only the Azul row scores.
	m := newMatcher().Match("atualiza o financiamento do banco azul para 11000", rows)

	require.Equal(t, OutcomeMatched, m.Outcome)
	assert.Equal(t, 0, m.Candidates[0].RowIndex)
	assert.True(t, m.NewValue.Equal(decimal.NewFromInt(11000)))
}

func TestMatchWithoutPivotTakesLastNumber(t *testing.T) {
	rows := [][]string{debtRow("Financiamento Carro", "Banco Azul", "12000")}

	m := newMatcher().Match("corrige a dívida do carro 11500", rows)

	require.Equal(t, OutcomeMatched, m.Outcome)
	assert.True(t, m.NewValue.Equal(decimal.NewFromInt(11500)))
}

func TestMatchNotFound(t *testing.T) {
	rows := [][]string{debtRow("Financiamento Carro", "Banco Azul", "12000")}

	m := newMatcher().Match("atualizar a dívida da bicicleta para 500", rows)

	assert.Equal(t, OutcomeNotFound, m.Outcome)
	assert.Empty(t, m.Candidates)
}

func TestMatchNotRecognizedFallsThrough(t *testing.T) {
	m := newMatcher().Match("quanto gastei com mercado?", nil)
	assert.Equal(t, OutcomeNotRecognized, m.Outcome)
}

func TestMatchAmountFormats(t *testing.T) {
	rows := [][]string{debtRow("Financiamento Apartamento", "Caixa", "180000")}

	m := newMatcher().Match("atualiza o financiamento do apartamento para 175.500,00", rows)

	require.Equal(t, OutcomeMatched, m.Outcome)
	assert.True(t, m.NewValue.Equal(decimal.RequireFromString("175500")),
		"got %s", m.NewValue)
}
