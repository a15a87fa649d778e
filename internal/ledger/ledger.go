// Package ledger defines the contract with the spreadsheet-backed store
// that owns all persistent records, plus the A1-style range arithmetic the
// rest of the application uses to address rows and cells. A Google Sheets
// implementation and an in-memory mock are provided.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrPersistence marks store write/read failures that must surface to the
// user as a generic apology and clear any in-progress session.
var ErrPersistence = errors.New("persistence error")

// Store is the collaborator contract consumed by the core. ReadTable
// returns the header row plus data rows, or an empty slice in the degraded
// case. State-changing operations return errors wrapping ErrPersistence.
type Store interface {
	// ReadTable reads a whole sheet by name.
	ReadTable(ctx context.Context, name string) ([][]string, error)
	// AppendRow appends one row to the named sheet.
	AppendRow(ctx context.Context, sheet string, row []string) error
	// UpdateRange rewrites the cells addressed by an A1-style ref.
	UpdateRange(ctx context.Context, ref string, row []string) error
	// DeleteRows removes data rows by 0-based index. Implementations
	// delete in descending order so earlier deletions never shift the
	// later targets.
	DeleteRows(ctx context.Context, sheet string, indices []int) error
}

// ColumnLetter converts a 0-based column index to its spreadsheet letter
// using bijective base-26: 0→A, 25→Z, 26→AA.
func ColumnLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}

// ColumnIndex is the inverse of ColumnLetter: A→0, Z→25, AA→26.
func ColumnIndex(letters string) int {
	idx := 0
	for _, r := range letters {
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}

// RowRef builds an A1 ref covering one data row, e.g. RowRef("Dívidas", 3,
// 0, 16) == "Dívidas!A5:Q5". rowIdx is 0-based and skips the header row.
func RowRef(sheet string, rowIdx, startCol, endCol int) string {
	line := rowIdx + 2
	return fmt.Sprintf("%s!%s%d:%s%d", sheet, ColumnLetter(startCol), line, ColumnLetter(endCol), line)
}

// CellRef builds an A1 ref for a single cell of a data row.
func CellRef(sheet string, rowIdx, col int) string {
	return fmt.Sprintf("%s!%s%d", sheet, ColumnLetter(col), rowIdx+2)
}

var refPattern = regexp.MustCompile(`^([^!]+)!([A-Z]+)(\d+)(?::([A-Z]+)(\d+))?$`)

// parsedRef is the decoded form of an A1 ref, with 0-based coordinates
// (row 0 is the first data row under the header).
type parsedRef struct {
	Sheet    string
	RowIdx   int
	StartCol int
	EndCol   int
}

func parseRef(ref string) (parsedRef, error) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil {
		return parsedRef{}, fmt.Errorf("malformed range ref %q", ref)
	}
	line, _ := strconv.Atoi(m[3])
	p := parsedRef{
		Sheet:    m[1],
		RowIdx:   line - 2,
		StartCol: ColumnIndex(m[2]),
	}
	p.EndCol = p.StartCol
	if m[4] != "" {
		p.EndCol = ColumnIndex(m[4])
	}
	return p, nil
}
