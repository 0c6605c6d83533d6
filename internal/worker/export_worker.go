package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trackexpense/internal/amqp"
	"trackexpense/internal/reports"
	"trackexpense/internal/sheets"
	"trackexpense/internal/storage"
)

// ExportWorker drives the export of transactions from SQLite to the external
// ledger. Queue messages are the fast path; the pending sweep catches rows
// whose messages were lost.
type ExportWorker struct {
	transactions *storage.TransactionRepository
	categories   *storage.CategoryRepository
	ledger       sheets.LedgerWriter
	batchSize    int
}

func NewExportWorker(transactions *storage.TransactionRepository, categories *storage.CategoryRepository, ledger sheets.LedgerWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		transactions: transactions,
		categories:   categories,
		ledger:       ledger,
		batchSize:    batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"transaction_id", msg.ID,
		"version", msg.Version)

	t, err := w.transactions.Get(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Row was deleted after the message was queued; nothing to export.
		slog.WarnContext(ctx, "Transaction no longer exists, dropping message",
			"transaction_id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exportTransaction(ctx, t.ID); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}

	return nil
}

// ProcessPending exports transactions that never made it to the ledger.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.transactions.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending transaction",
				"transaction_id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck sweeps a larger pending batch once at worker startup to
// recover from missed messages or worker downtime.
func (w *ExportWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.transactions.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"transaction_id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id string) error {
	t, err := w.transactions.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	categoryName := reports.UnknownCategoryName
	if category, err := w.categories.Get(ctx, t.CategoryID); err == nil {
		categoryName = category.Name
	} else {
		slog.WarnContext(ctx, "Could not resolve category for export",
			"transaction_id", t.ID,
			"category_id", t.CategoryID,
			"error", err)
	}

	// A row that fails validation will never export; flag it so the sweep
	// stops retrying it. Ledger errors stay pending and retry later.
	if err := t.Validate(); err != nil {
		slog.ErrorContext(ctx, "Transaction failed validation, excluding from export",
			"transaction_id", t.ID, "error", err)
		if markErr := w.transactions.MarkSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"transaction_id", t.ID, "error", markErr)
		}
		return nil
	}

	ref, err := w.ledger.AppendTransaction(ctx, t, categoryName)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.transactions.MarkSynced(ctx, t.ID); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Exported transaction to ledger",
		"transaction_id", t.ID,
		"row_ref", ref)

	return nil
}
