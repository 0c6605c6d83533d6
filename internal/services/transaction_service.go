package services

import (
	"context"
	"fmt"
	"log/slog"

	"trackexpense/internal/core"
	"trackexpense/internal/storage"
)

// SyncPublisher publishes transaction sync messages for the export worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string, version int64) error
}

// TransactionService orchestrates transaction writes across SQLite and AMQP.
// The database write is the source of truth; the sync message is best effort
// and the worker's pending sweep covers anything that never reached the queue.
type TransactionService struct {
	transactions *storage.TransactionRepository
	publisher    SyncPublisher
}

func NewTransactionService(transactions *storage.TransactionRepository, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		publisher:    publisher,
	}
}

// Create saves a transaction locally and publishes a sync message
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.transactions.Add(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	// New rows start at version 1
	if err := s.publishSyncMessage(ctx, saved.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"transaction_id", saved.ID, "error", err)
		// Don't fail the request, the transaction is saved locally
	}

	return saved, nil
}

// Update rewrites a transaction and re-queues it for export
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.transactions.Update(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	version, err := s.transactions.GetVersion(ctx, t.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read transaction version",
			"transaction_id", t.ID, "error", err)
		return nil
	}

	if err := s.publishSyncMessage(ctx, t.ID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"transaction_id", t.ID, "version", version, "error", err)
	}

	return nil
}

// Remove deletes a transaction. The ledger keeps its rows; removal only
// stops future exports.
func (s *TransactionService) Remove(ctx context.Context, id string) error {
	if err := s.transactions.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, id string, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id, version)
}
