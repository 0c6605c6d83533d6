package sheets

import (
	"context"

	"trackexpense/internal/core"
)

// Ports for outbound ledger adapters.
type (
	// LedgerWriter appends a transaction row to an external ledger.
	// categoryName is pre-resolved by the caller; the ledger never sees
	// internal category IDs.
	LedgerWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction, categoryName string) (rowRef string, err error)
	}
)
