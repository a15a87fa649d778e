package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "Gastos", cfg.Sheets.Expenses)
	assert.Equal(t, "Receitas", cfg.Sheets.Income)
	assert.Equal(t, "Dívidas", cfg.Sheets.Debts)
	assert.Equal(t, "Metas", cfg.Sheets.Goals)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
}

func TestValidateRejectsBadCard(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.AI.TimeoutSeconds = 30
	cfg.Cards = []Card{{Name: "Nubank", Sheet: "Cartão Nubank", ClosingDay: 42}}

	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closing_day")
}

func TestFindCard(t *testing.T) {
	cfg := &Config{Cards: []Card{
		{Name: "Nubank", Sheet: "Cartão Nubank", ClosingDay: 3},
		{Name: "Inter Gold", Sheet: "Cartão Inter", ClosingDay: 28},
	}}

	card, ok := cfg.FindCard("nubank")
	require.True(t, ok)
	assert.Equal(t, "Cartão Nubank", card.Sheet)

	card, ok = cfg.FindCard("inter")
	require.True(t, ok)
	assert.Equal(t, 28, card.ClosingDay)

	_, ok = cfg.FindCard("visa")
	assert.False(t, ok)
}
