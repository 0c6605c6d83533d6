// Package reports computes the aggregate views over a user's transaction
// history: per-category expense sums, month-bucketed income/expense series,
// top-N ranked expenses and percent-of-total category breakdowns.
//
// Everything in this file is a pure function of its inputs. Callers load the
// transaction set up front and pass it in; nothing here touches storage.
package reports

import (
	"sort"
	"time"

	"trackexpense/internal/core"
)

// UnknownCategoryName is substituted when a transaction references a
// category id that no longer resolves. Reports keep the row instead of
// dropping it so the sums stay complete.
const UnknownCategoryName = "Error"

type (
	// CategoryAmount is one row of the expenses-per-category report.
	CategoryAmount struct {
		CategoryID   string     `json:"categoryId"`
		CategoryName string     `json:"category"`
		Amount       core.Money `json:"amount"`
	}

	// MonthBucket is one calendar-month slot of the income/expense series.
	// A bucket is present for every month in the requested window even when
	// no transaction touched it.
	MonthBucket struct {
		Month   string     `json:"month"` // full English month name
		Date    time.Time  `json:"date"`  // first day of the month, UTC
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
	}

	// CategoryPercent is one row of the percent-of-total breakdown.
	CategoryPercent struct {
		CategoryID string     `json:"categoryId"`
		Total      core.Money `json:"total"`
		Percent    float64    `json:"percents"`
	}
)

// Summarize sums expense amounts per category over a trailing window of
// windowDays calendar days ending today. Today is always part of the window:
// the covered range is [today-(windowDays-1), today+1d).
//
// Rows come back ordered by amount descending; categories with equal sums
// keep first-encountered order. windowDays must be >= 1 and is validated by
// the caller.
func Summarize(transactions []core.Transaction, categories []core.Category, windowDays int, today time.Time) []CategoryAmount {
	day := midnight(today)
	begin := day.AddDate(0, 0, -(windowDays - 1))
	end := day.AddDate(0, 0, 1)

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	sums := make(map[string]int64)
	var order []string
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		if t.Date.Before(begin) || !t.Date.Before(end) {
			continue
		}
		if _, seen := sums[t.CategoryID]; !seen {
			order = append(order, t.CategoryID)
		}
		sums[t.CategoryID] += t.Amount.Cents
	}

	result := make([]CategoryAmount, 0, len(order))
	for _, id := range order {
		name, ok := names[id]
		if !ok {
			name = UnknownCategoryName
		}
		result = append(result, CategoryAmount{
			CategoryID:   id,
			CategoryName: name,
			Amount:       core.Money{Cents: sums[id]},
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Amount.Cents > result[j].Amount.Cents
	})
	return result
}

// BuildSeries buckets income and expense sums into calendar months. It
// returns exactly monthsCount contiguous buckets, oldest first, ending at
// the month containing now. Months without activity report zero for both
// fields. monthsCount must be >= 1 and is validated by the caller.
func BuildSeries(transactions []core.Transaction, monthsCount int, now time.Time) []MonthBucket {
	begin := firstOfMonth(now).AddDate(0, -(monthsCount - 1), 0)

	buckets := make([]MonthBucket, 0, monthsCount)
	for i := 0; i < monthsCount; i++ {
		start := begin.AddDate(0, i, 0)
		buckets = append(buckets, MonthBucket{
			Month: start.Month().String(),
			Date:  start,
		})
	}

	for _, t := range transactions {
		for i := range buckets {
			if !core.SameMonth(t.Date, buckets[i].Date) {
				continue
			}
			switch t.Type {
			case core.Income:
				buckets[i].Income = buckets[i].Income.Add(t.Amount)
			case core.Expense:
				buckets[i].Expense = buckets[i].Expense.Add(t.Amount)
			}
			break
		}
	}
	return buckets
}

// TopN returns the n largest expense transactions with start <= date <= end,
// ordered by amount descending. Transactions with equal amounts keep their
// input order. n == 0 returns every qualifying transaction; callers treat
// zero as "no limit". Negative n never reaches this function.
func TopN(transactions []core.Transaction, start, end time.Time, n int) []core.Transaction {
	var qualifying []core.Transaction
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		qualifying = append(qualifying, t)
	}
	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].Amount.Cents > qualifying[j].Amount.Cents
	})
	if n > 0 && len(qualifying) > n {
		qualifying = qualifying[:n]
	}
	return qualifying
}

// Percentages computes each category's share of the total expense amount
// with start <= date <= end. Only categories with at least one qualifying
// transaction appear. When nothing qualifies the result is empty rather
// than a division by zero.
//
// Shares are computed in integer basis points with largest-remainder
// distribution of the leftover, so the returned percents always sum to
// exactly 100.00 regardless of how the divisions round.
func Percentages(transactions []core.Transaction, start, end time.Time) []CategoryPercent {
	sums := make(map[string]int64)
	var order []string
	var grand int64
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		if _, seen := sums[t.CategoryID]; !seen {
			order = append(order, t.CategoryID)
		}
		sums[t.CategoryID] += t.Amount.Cents
		grand += t.Amount.Cents
	}
	if grand == 0 {
		// Non-nil so the empty report encodes as [] and not null.
		return []CategoryPercent{}
	}

	// 10000 basis points = 100%. Floor every share first, then hand the
	// remaining points to the categories with the largest truncation loss.
	const totalBp = 10000
	type share struct {
		index     int
		bp        int64
		remainder int64
	}
	shares := make([]share, len(order))
	var assigned int64
	for i, id := range order {
		bp := sums[id] * totalBp / grand
		shares[i] = share{index: i, bp: bp, remainder: sums[id] * totalBp % grand}
		assigned += bp
	}
	leftover := totalBp - assigned
	byRemainder := make([]*share, len(shares))
	for i := range shares {
		byRemainder[i] = &shares[i]
	}
	sort.SliceStable(byRemainder, func(i, j int) bool {
		return byRemainder[i].remainder > byRemainder[j].remainder
	})
	for i := int64(0); i < leftover; i++ {
		byRemainder[i%int64(len(byRemainder))].bp++
	}

	result := make([]CategoryPercent, len(order))
	for i, id := range order {
		result[i] = CategoryPercent{
			CategoryID: id,
			Total:      core.Money{Cents: sums[id]},
			Percent:    float64(shares[i].bp) / 100,
		}
	}
	return result
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
