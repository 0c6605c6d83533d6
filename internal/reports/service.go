package reports

import (
	"context"
	"fmt"
	"time"

	"trackexpense/internal/core"
)

// TransactionSource supplies the raw transaction sets the aggregations run
// over. The storage layer implements it; tests substitute fixtures.
type TransactionSource interface {
	GetAllForUser(ctx context.Context, userID string) ([]core.Transaction, error)
	GetAllForAccount(ctx context.Context, accountID string) ([]core.Transaction, error)
}

// CategorySource resolves category display names during summarization.
type CategorySource interface {
	GetAll(ctx context.Context) ([]core.Category, error)
}

// Service runs the report aggregations against injected data sources. It
// holds no state between calls; concurrent use is safe.
type Service struct {
	transactions TransactionSource
	categories   CategorySource
	now          func() time.Time
}

func NewService(transactions TransactionSource, categories CategorySource) *Service {
	return &Service{
		transactions: transactions,
		categories:   categories,
		now:          time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// load fetches the transaction scope for a report: every transaction of the
// user when accountID is empty, otherwise just that account's.
func (s *Service) load(ctx context.Context, userID, accountID string) ([]core.Transaction, error) {
	if accountID == "" {
		txs, err := s.transactions.GetAllForUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load user transactions: %w", err)
		}
		return txs, nil
	}
	txs, err := s.transactions.GetAllForAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account transactions: %w", err)
	}
	return txs, nil
}

// ExpensesPerCategories sums the user's expenses per category over the
// trailing days window. days must be >= 1; the handler validates it.
func (s *Service) ExpensesPerCategories(ctx context.Context, userID, accountID string, days int) ([]CategoryAmount, error) {
	txs, err := s.load(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return Summarize(txs, categories, days, s.now()), nil
}

// IncomeAndExpensesByMonths builds the month-bucketed series over the
// trailing months window. months must be >= 1; the handler validates it.
func (s *Service) IncomeAndExpensesByMonths(ctx context.Context, userID, accountID string, months int) ([]MonthBucket, error) {
	txs, err := s.load(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	return BuildSeries(txs, months, s.now()), nil
}

// TopNExpenses returns the n largest expenses between start and end. The
// handler guarantees start <= now, clamps end to now and rejects n < 0;
// n == 0 means no limit.
func (s *Service) TopNExpenses(ctx context.Context, userID string, start, end time.Time, accountID string, n int) ([]core.Transaction, error) {
	txs, err := s.load(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	return TopN(txs, start, end, n), nil
}

// CategoryExpensesAsPercents returns each category's share of the expense
// total between start and end.
func (s *Service) CategoryExpensesAsPercents(ctx context.Context, userID string, start, end time.Time, accountID string) ([]CategoryPercent, error) {
	txs, err := s.load(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	return Percentages(txs, start, end), nil
}
