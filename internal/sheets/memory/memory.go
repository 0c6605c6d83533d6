// Package memory provides an in-process ledger backend. It backs tests and
// local development where no Google credentials are configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"trackexpense/internal/core"
)

type Row struct {
	Transaction core.Transaction
	Category    string
}

type Ledger struct {
	mu   sync.Mutex
	rows []Row
}

func New() *Ledger {
	return &Ledger{}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (l *Ledger) AppendTransaction(_ context.Context, t core.Transaction, categoryName string) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, Row{Transaction: t, Category: categoryName})
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (l *Ledger) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Row(nil), l.rows...)
}
