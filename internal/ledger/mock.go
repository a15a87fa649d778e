package ledger

import (
	"context"
	"sort"
	"sync"
)

// MockStore is an in-memory Store used by tests. Tables are seeded with a
// header row plus data rows; failure modes can be forced per operation.
type MockStore struct {
	mu     sync.Mutex
	Tables map[string][][]string

	FailReads   bool
	FailAppends bool
	FailUpdates bool
	FailDeletes bool

	// FailAppendAfter forces append failures once that many appends have
	// succeeded. Used to exercise partial-batch reporting. Negative means
	// never fail.
	FailAppendAfter int

	appends int
}

// NewMockStore returns an empty mock with no forced failures.
func NewMockStore() *MockStore {
	return &MockStore{Tables: make(map[string][][]string), FailAppendAfter: -1}
}

// Seed replaces a table's contents (header row first).
func (m *MockStore) Seed(name string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	m.Tables[name] = copied
}

func (m *MockStore) ReadTable(_ context.Context, name string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return [][]string{}, ErrPersistence
	}
	rows, ok := m.Tables[name]
	if !ok {
		return [][]string{}, nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *MockStore) AppendRow(_ context.Context, sheet string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAppends || (m.FailAppendAfter >= 0 && m.appends >= m.FailAppendAfter) {
		return ErrPersistence
	}
	m.appends++
	m.Tables[sheet] = append(m.Tables[sheet], append([]string(nil), row...))
	return nil
}

func (m *MockStore) UpdateRange(_ context.Context, ref string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUpdates {
		return ErrPersistence
	}
	p, err := parseRef(ref)
	if err != nil {
		return err
	}
	table := m.Tables[p.Sheet]
	line := p.RowIdx + 1 // +1 for the header row
	if line < 0 || line >= len(table) {
		return ErrPersistence
	}
	for i, v := range row {
		col := p.StartCol + i
		if col > p.EndCol {
			break
		}
		for col >= len(table[line]) {
			table[line] = append(table[line], "")
		}
		table[line][col] = v
	}
	return nil
}

func (m *MockStore) DeleteRows(_ context.Context, sheet string, indices []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDeletes {
		return ErrPersistence
	}
	table := m.Tables[sheet]
	sorted := append([]int(nil), indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, idx := range sorted {
		line := idx + 1
		if line < 1 || line >= len(table) {
			continue
		}
		table = append(table[:line], table[line+1:]...)
	}
	m.Tables[sheet] = table
	return nil
}

// DataRows returns a table's rows without the header.
func (m *MockStore) DataRows(name string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.Tables[name]
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}
