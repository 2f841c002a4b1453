// Package memory is an in-process sheet mirror used by the worker when no
// spreadsheet is configured, and by tests.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/export"
	"fintrack/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows []export.Row
}

var _ sheets.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendRow(_ context.Context, row export.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, row)
	return nil
}

func (m *Mirror) DeleteRows(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	removed := 0
	for _, r := range m.rows {
		if r.ID == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return removed, nil
}

// Rows returns a copy of the mirrored rows in sheet order.
func (m *Mirror) Rows() []export.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]export.Row(nil), m.rows...)
}
