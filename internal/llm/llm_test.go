package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		expected string
	}{
		{"Valid intent", map[string]any{"intent": "saldo_do_mes"}, "saldo_do_mes"},
		{"Blank intent", map[string]any{"intent": "  "}, IntentGeneric},
		{"Missing intent", map[string]any{"parameters": map[string]any{}}, IntentGeneric},
		{"Wrong type", map[string]any{"intent": 42}, IntentGeneric},
		{"Nil map", nil, IntentGeneric},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := ParseClassification(tc.raw)
			assert.Equal(t, tc.expected, c.Intent)
			assert.NotNil(t, c.Parameters)
		})
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain object", `{"a":1}`, `{"a":1}`},
		{"Fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Prose around object", `Claro! {"a":1} espero ter ajudado`, `{"a":1}`},
		{"Array", "```\n[1,2]\n```", `[1,2]`},
		{"No JSON at all", "sem json", "sem json"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CleanModelJSON(tc.input))
		})
	}
}

func TestDecodeInto(t *testing.T) {
	raw := map[string]any{"descricao": "mercado", "valor": 45.9}
	var out struct {
		Descricao string  `json:"descricao"`
		Valor     float64 `json:"valor"`
	}
	require.NoError(t, DecodeInto(raw, &out))
	assert.Equal(t, "mercado", out.Descricao)
	assert.Equal(t, 45.9, out.Valor)
}

func TestBuildClassificationPrompt(t *testing.T) {
	now := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.Local)
	prompt := BuildClassificationPrompt(defaultTaxonomy, now, "quanto gastei com mercado?")

	assert.Contains(t, prompt, "total_gastos_categoria_mes")
	assert.Contains(t, prompt, "Alimentação")
	assert.Contains(t, prompt, "05/03/2026")
	assert.Contains(t, prompt, "quanto gastei com mercado?")
}

func TestBuildInstallmentMappingPrompt(t *testing.T) {
	prompt := BuildInstallmentMappingPrompt([]string{"notebook", "fone"}, "notebook em 3x, resto à vista")
	assert.Contains(t, prompt, "1. notebook")
	assert.Contains(t, prompt, "2. fone")
	assert.Contains(t, prompt, "notebook em 3x")
}
