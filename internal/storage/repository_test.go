package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trackexpense/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUserAndAccount(t *testing.T, store *Store) (core.User, core.Account, core.Category) {
	t.Helper()
	ctx := context.Background()

	user, err := store.Users.Add(ctx, core.User{Email: "a@b.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	account, err := store.Accounts.Add(ctx, core.Account{UserID: user.ID, Name: "Card"})
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	category, err := store.Categories.Add(ctx, core.Category{UserID: user.ID, Name: "Food"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	return user, account, category
}

func TestUserRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user, _, _ := seedUserAndAccount(t, store)

	byEmail, err := store.Users.GetByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, byEmail.ID)
	}

	if _, err := store.Users.GetByEmail(ctx, "missing@b.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := store.Users.Add(ctx, core.User{Email: "a@b.com", PasswordHash: "y"}); err == nil {
		t.Fatalf("duplicate email must fail")
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user, account, category := seedUserAndAccount(t, store)

	date := time.Date(2025, 3, 15, 12, 30, 0, 0, time.UTC)
	added, err := store.Transactions.Add(ctx, core.Transaction{
		UserID:      user.ID,
		AccountID:   account.ID,
		CategoryID:  category.ID,
		Amount:      core.Money{Cents: 1234},
		Type:        core.Expense,
		Date:        date,
		Description: "groceries",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if added.ID == "" {
		t.Fatalf("expected generated id")
	}

	got, err := store.Transactions.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.Amount.Cents != 1234 || got.Type != core.Expense || !got.Date.Equal(date) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	forUser, err := store.Transactions.GetAllForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get for user: %v", err)
	}
	if len(forUser) != 1 {
		t.Fatalf("expected 1 transaction for user, got %d", len(forUser))
	}

	forAccount, err := store.Transactions.GetAllForAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get for account: %v", err)
	}
	if len(forAccount) != 1 {
		t.Fatalf("expected 1 transaction for account, got %d", len(forAccount))
	}

	if err := store.Transactions.Remove(ctx, added.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Transactions.Get(ctx, added.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestTransactionSyncLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user, account, category := seedUserAndAccount(t, store)

	tx, err := store.Transactions.Add(ctx, core.Transaction{
		UserID:     user.ID,
		AccountID:  account.ID,
		CategoryID: category.ID,
		Amount:     core.Money{Cents: 100},
		Type:       core.Income,
		Date:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	pending, err := store.Transactions.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tx.ID || pending[0].Version != 1 {
		t.Fatalf("expected new transaction pending at version 1, got %+v", pending)
	}

	if err := store.Transactions.MarkSynced(ctx, tx.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = store.Transactions.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending after sync, got %d", len(pending))
	}

	// Updates bump the version and re-queue the row for export.
	tx.Amount = core.Money{Cents: 200}
	if err := store.Transactions.Update(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err = store.Transactions.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("expected pending at version 2 after update, got %+v", pending)
	}

	if err := store.Transactions.MarkSyncError(ctx, tx.ID); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}
	pending, err = store.Transactions.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("errored rows must leave the pending sweep, got %d", len(pending))
	}
}

func TestAccountAndCategoryCRUD(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	user, account, category := seedUserAndAccount(t, store)

	account.Name = "Cash"
	if err := store.Accounts.Update(ctx, account); err != nil {
		t.Fatalf("update account: %v", err)
	}
	got, err := store.Accounts.Get(ctx, account.ID)
	if err != nil || got.Name != "Cash" {
		t.Fatalf("expected renamed account, got %+v (err=%v)", got, err)
	}

	category.Description = "supermarket"
	if err := store.Categories.Update(ctx, category); err != nil {
		t.Fatalf("update category: %v", err)
	}

	cats, err := store.Categories.GetForUser(ctx, user.ID)
	if err != nil || len(cats) != 1 {
		t.Fatalf("expected 1 category for user, got %d (err=%v)", len(cats), err)
	}

	if err := store.Categories.Remove(ctx, category.ID); err != nil {
		t.Fatalf("remove category: %v", err)
	}
	if err := store.Categories.Remove(ctx, category.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double remove, got %v", err)
	}
}

func TestSeedDefaultCategories(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	user, err := store.Users.Add(ctx, core.User{Email: "seed@b.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}

	if err := store.Categories.SeedDefaults(ctx, user.ID); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}

	cats, err := store.Categories.GetForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get categories: %v", err)
	}
	if len(cats) != len(defaultCategories) {
		t.Fatalf("expected %d seeded categories, got %d", len(defaultCategories), len(cats))
	}
	names := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.UserID != user.ID {
			t.Errorf("seeded category %q owned by %q, want %q", c.Name, c.UserID, user.ID)
		}
		names[c.Name] = true
	}
	for _, want := range []string{"Health", "Home", "Rent", "Hobby", "Restaurants", "Sport", "Transport"} {
		if !names[want] {
			t.Errorf("missing default category %q", want)
		}
	}

	// Second run must not duplicate anything.
	if err := store.Categories.SeedDefaults(ctx, user.ID); err != nil {
		t.Fatalf("reseed defaults: %v", err)
	}
	cats, err = store.Categories.GetForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get categories after reseed: %v", err)
	}
	if len(cats) != len(defaultCategories) {
		t.Fatalf("reseed duplicated rows: got %d categories", len(cats))
	}
}
