package core

import (
	"testing"
	"time"
)

func TestTransactionTypeValidate(t *testing.T) {
	if err := Income.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := Expense.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := TransactionType("transfer").Validate(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:       Expense,
		Amount:     Money{Cents: 100},
		AccountID:  "acc",
		CategoryID: "cat",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: Expense, Amount: Money{Cents: 1}, AccountID: "a", CategoryID: "c"}, // zero date
		{Date: good.Date, Type: "loan", Amount: Money{Cents: 1}, AccountID: "a", CategoryID: "c"},
		{Date: good.Date, Type: Income, Amount: Money{Cents: 0}, AccountID: "a", CategoryID: "c"},
		{Date: good.Date, Type: Income, Amount: Money{Cents: 1}, AccountID: "", CategoryID: "c"},
		{Date: good.Date, Type: Income, Amount: Money{Cents: 1}, AccountID: "a", CategoryID: ""},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestUserValidate(t *testing.T) {
	if err := (User{Email: "a@b.com"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (User{Email: ""}).Validate(); err == nil {
		t.Fatalf("expected error for empty email")
	}
	if err := (User{Email: "nope"}).Validate(); err == nil {
		t.Fatalf("expected error for malformed email")
	}
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	c := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !SameMonth(a, b) {
		t.Fatalf("expected %v and %v in the same month", a, b)
	}
	if SameMonth(a, c) {
		t.Fatalf("different years must not match")
	}
}
