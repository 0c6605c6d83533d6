package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Transaction is a single dated movement of money on an account.
	// Amounts are always non-negative; the direction comes from Type.
	Transaction struct {
		ID          string
		UserID      string
		AccountID   string
		CategoryID  string
		Amount      Money
		Type        TransactionType
		Date        time.Time // UTC
		Description string
	}

	Category struct {
		ID          string
		UserID      string
		Name        string
		Description string
	}

	Account struct {
		ID          string
		UserID      string
		Name        string
		Description string
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyEmail      = errors.New("empty email")
	ErrEmptyAccountID  = errors.New("empty account id")
	ErrEmptyCategoryID = errors.New("empty category id")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccountID
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategoryID
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

func (u User) Validate() error {
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(email, "@") {
		return errors.New("malformed email")
	}
	return nil
}

// SameMonth reports whether two instants fall in the same calendar month.
// Month bucketing in reports compares year and month exactly, never a
// rolling 30-day window.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
