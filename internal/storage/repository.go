package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trackexpense/internal/core"
)

// ErrNotFound is returned when a lookup matches no row. Handlers map it to
// a 404 or, for report account scoping, to an empty scope.
var ErrNotFound = errors.New("not found")

// Dates are stored as RFC3339 UTC strings so lexical order matches
// chronological order.
const dateLayout = time.RFC3339

type (
	UserRepository        struct{ db *sql.DB }
	AccountRepository     struct{ db *sql.DB }
	CategoryRepository    struct{ db *sql.DB }
	TransactionRepository struct{ db *sql.DB }
)

// PendingTransaction is the minimal row the export worker needs to drive
// its catch-up sweep.
type PendingTransaction struct {
	ID      string
	Version int64
}

func newID() string { return uuid.NewString() }

// --- users ---

func (r *UserRepository) Add(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (core.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE id = ?`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email))
}

func (r *UserRepository) scanOne(row *sql.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// --- accounts ---

func (r *AccountRepository) Add(ctx context.Context, a core.Account) (core.Account, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, description) VALUES (?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, a.Description)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) Get(ctx context.Context, id string) (core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetForUser(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, description FROM accounts WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Description); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Update(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, description = ? WHERE id = ?`,
		a.Name, a.Description, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return checkAffected(res)
}

func (r *AccountRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return checkAffected(res)
}

// --- categories ---

// defaultCategories is the starter set every new user receives.
var defaultCategories = []core.Category{
	{Name: "Health", Description: "Hospitals, medicines etc."},
	{Name: "Home", Description: "Towels, soaps etc."},
	{Name: "Rent", Description: "Rent"},
	{Name: "Hobby", Description: "Hobby"},
	{Name: "Restaurants", Description: "Cafe, restaurants, street food"},
	{Name: "Sport", Description: "Training, supplies"},
	{Name: "Transport", Description: "Bus, taxi, subway"},
}

// SeedDefaults inserts the starter categories for a user, skipping any
// name the user already has. Calling it twice is a no-op.
func (r *CategoryRepository) SeedDefaults(ctx context.Context, userID string) error {
	existing, err := r.GetForUser(ctx, userID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Name] = true
	}
	for _, c := range defaultCategories {
		if have[c.Name] {
			continue
		}
		c.UserID = userID
		if _, err := r.Add(ctx, c); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}
	return nil
}

func (r *CategoryRepository) Add(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, description) VALUES (?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Description)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	return c, nil
}

// GetAll returns every category regardless of owner. The report summarizer
// only needs it for id-to-name resolution.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]core.Category, error) {
	return r.queryMany(ctx,
		`SELECT id, user_id, name, description FROM categories ORDER BY created_at`)
}

func (r *CategoryRepository) GetForUser(ctx context.Context, userID string) ([]core.Category, error) {
	return r.queryMany(ctx,
		`SELECT id, user_id, name, description FROM categories WHERE user_id = ? ORDER BY created_at`, userID)
}

func (r *CategoryRepository) queryMany(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		c.Name, c.Description, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return checkAffected(res)
}

func (r *CategoryRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return checkAffected(res)
}

// --- transactions ---

const transactionColumns = `id, user_id, account_id, category_id, amount_cents, type, date, description`

func (r *TransactionRepository) Add(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, account_id, category_id, amount_cents, type, date, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.AccountID, t.CategoryID, t.Amount.Cents, string(t.Type),
		t.Date.UTC().Format(dateLayout), t.Description)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	return t, err
}

func (r *TransactionRepository) GetAllForUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	return r.queryMany(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY date, created_at`, userID)
}

func (r *TransactionRepository) GetAllForAccount(ctx context.Context, accountID string) ([]core.Transaction, error) {
	return r.queryMany(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE account_id = ? ORDER BY date, created_at`, accountID)
}

func (r *TransactionRepository) queryMany(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) Update(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET account_id = ?, category_id = ?, amount_cents = ?, type = ?, date = ?, description = ?,
		     synced = 0, version = version + 1
		 WHERE id = ?`,
		t.AccountID, t.CategoryID, t.Amount.Cents, string(t.Type),
		t.Date.UTC().Format(dateLayout), t.Description, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return checkAffected(res)
}

func (r *TransactionRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return checkAffected(res)
}

// GetPendingSync returns transactions not yet exported to the ledger, oldest
// first. The worker uses it as a backup sweep for lost queue messages.
func (r *TransactionRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version FROM transactions
		 WHERE synced = 0 AND sync_error = 0
		 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingTransaction
	for rows.Next() {
		var p PendingTransaction
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// GetVersion returns the current sync version of a transaction.
func (r *TransactionRepository) GetVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM transactions WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("scan transaction version: %w", err)
	}
	return version, nil
}

func (r *TransactionRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return checkAffected(res)
}

func (r *TransactionRepository) MarkSyncError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return checkAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		typ     string
		dateRaw string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID,
		&t.Amount.Cents, &typ, &dateRaw, &t.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Date, err = time.Parse(dateLayout, dateRaw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateRaw, err)
	}
	return t, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
