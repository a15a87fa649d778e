package normalizer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Lowercase", "MERCADO", "mercado"},
		{"Accents stripped", "Cartão de Crédito", "cartao de credito"},
		{"Cedilla", "Março", "marco"},
		{"Mixed", "DÍVida do João", "divida do joao"},
		{"Empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"Plain integer", "70", "70", true},
		{"Comma decimal", "70,50", "70.5", true},
		{"Thousands with comma decimal", "1.234,56", "1234.56", true},
		{"Currency prefix", "R$ 150", "150", true},
		{"K suffix", "70k", "70000", true},
		{"M suffix with dot decimal", "2.5m", "2500000", true},
		{"Dot decimal", "12.75", "12.75", true},
		{"Embedded in text", "gastei 45,90 no mercado", "45.9", true},
		{"Word after number is not a suffix", "paguei 30 mesmo", "30", true},
		{"Km is not thousands", "corrida de 10 km", "10", true},
		{"Suffix before punctuation", "uns 30k, acho", "30000", true},
		{"No numeric token", "abc", "", false},
		{"Empty", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			value, ok := ParseAmount(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, value.Equal(decimal.RequireFromString(tc.expected)),
					"expected %s, got %s", tc.expected, value)
			}
		})
	}
}

func TestParseLastAmount(t *testing.T) {
	value, ok := ParseLastAmount("dívida de 100 agora vale 70")
	assert.True(t, ok)
	assert.True(t, value.Equal(decimal.NewFromInt(70)))

	value, ok = ParseLastAmount("paguei 30 mesmo")
	assert.True(t, ok)
	assert.True(t, value.Equal(decimal.NewFromInt(30)))

	_, ok = ParseLastAmount("sem numeros aqui")
	assert.False(t, ok)
}

func TestParseDateOnly(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
		day   int
		month time.Month
		year  int
	}{
		{"Valid date", "15/03/2026", true, 15, time.March, 2026},
		{"Single digit day", "5/3/2026", true, 5, time.March, 2026},
		{"Day overflow", "32/01/2026", false, 0, 0, 0},
		{"Non leap February", "29/02/2025", false, 0, 0, 0},
		{"Leap February", "29/02/2024", true, 29, time.February, 2024},
		{"Month overflow", "10/13/2026", false, 0, 0, 0},
		{"Garbage", "amanhã", false, 0, 0, 0},
		{"Empty", "", false, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, ok := ParseDateOnly(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.day, date.Day())
				assert.Equal(t, tc.month, date.Month())
				assert.Equal(t, tc.year, date.Year())
			}
		})
	}
}

func TestParseDateTime(t *testing.T) {
	date, ok := ParseDateTime("15/03/2026 08:30")
	assert.True(t, ok)
	assert.Equal(t, 8, date.Hour())
	assert.Equal(t, 30, date.Minute())

	_, ok = ParseDateTime("15/03/2026 25:00")
	assert.False(t, ok)

	_, ok = ParseDateTime("15/03/2026")
	assert.False(t, ok)
}

func TestMonthIndex(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int
		ok       bool
	}{
		{"Name with accent", "Março", 2, true},
		{"Name without accent", "marco", 2, true},
		{"Name lowercase", "dezembro", 11, true},
		{"Numeric string", "4", 4, true},
		{"Int", 0, 0, true},
		{"Float from JSON", float64(7), 7, true},
		{"Non-integral float", 2.9, 0, false},
		{"Out of range", 12, 0, false},
		{"Unknown name", "smarch", 0, false},
		{"Nil", nil, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx, ok := MonthIndex(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, idx)
			}
		})
	}
}

func TestBillingLabel(t *testing.T) {
	assert.Equal(t, "Março de 2026", BillingLabel(2, 2026))
	assert.Equal(t, "Janeiro de 2027", BillingLabel(0, 2027))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("café", "CAFE"))
	assert.Greater(t, Similarity("mercado", "mercdo"), 0.65)
	assert.Less(t, Similarity("mercado", "farmacia"), 0.65)
	assert.Equal(t, 1.0, Similarity("", ""))
}
