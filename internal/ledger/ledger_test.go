package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		idx      int
		expected string
	}{
		{0, "A"},
		{4, "E"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, ColumnLetter(tc.idx))
		assert.Equal(t, tc.idx, ColumnIndex(tc.expected))
	}
}

func TestRowAndCellRefs(t *testing.T) {
	// Data row 3 sits on spreadsheet line 5 (1-based plus header).
	assert.Equal(t, "Dívidas!A5:Q5", RowRef("Dívidas", 3, 0, 16))
	assert.Equal(t, "Dívidas!E5", CellRef("Dívidas", 3, 4))
}

func TestParseRef(t *testing.T) {
	p, err := parseRef("Metas!C10:H10")
	require.NoError(t, err)
	assert.Equal(t, "Metas", p.Sheet)
	assert.Equal(t, 8, p.RowIdx)
	assert.Equal(t, 2, p.StartCol)
	assert.Equal(t, 7, p.EndCol)

	_, err = parseRef("no-ref-here")
	assert.Error(t, err)
}

func TestMockUpdateRange(t *testing.T) {
	m := NewMockStore()
	m.Seed("Dívidas", [][]string{
		{"Nome", "Credor", "Saldo"},
		{"Carro", "Banco", "100"},
	})

	err := m.UpdateRange(context.Background(), "Dívidas!C2", []string{"70"})
	require.NoError(t, err)
	assert.Equal(t, "70", m.DataRows("Dívidas")[0][2])
}

func TestMockDeleteRowsDescending(t *testing.T) {
	m := NewMockStore()
	m.Seed("Gastos", [][]string{
		{"Data", "Descrição"},
		{"01/03/2026", "a"},
		{"02/03/2026", "b"},
		{"03/03/2026", "c"},
		{"04/03/2026", "d"},
		{"05/03/2026", "e"},
		{"06/03/2026", "f"},
	})

	// Indices given out of order; higher index must go first so the lower
	// one still points at the intended row.
	err := m.DeleteRows(context.Background(), "Gastos", []int{5, 2})
	require.NoError(t, err)

	rows := m.DataRows("Gastos")
	require.Len(t, rows, 4)
	assert.Equal(t, "a", rows[0][1])
	assert.Equal(t, "b", rows[1][1])
	assert.Equal(t, "d", rows[2][1])
	assert.Equal(t, "e", rows[3][1])
}
