package reports

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"
	"time"

	"trackexpense/internal/core"
)

var testToday = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func expense(id, categoryID string, cents int64, date time.Time) core.Transaction {
	return core.Transaction{
		ID:         id,
		UserID:     "user",
		AccountID:  "acc",
		CategoryID: categoryID,
		Amount:     core.Money{Cents: cents},
		Type:       core.Expense,
		Date:       date,
	}
}

func income(id, categoryID string, cents int64, date time.Time) core.Transaction {
	t := expense(id, categoryID, cents, date)
	t.Type = core.Income
	return t
}

func TestSummarizeGroupsAndOrders(t *testing.T) {
	cats := []core.Category{
		{ID: "food", Name: "Food"},
		{ID: "rent", Name: "Rent"},
	}
	txs := []core.Transaction{
		expense("1", "food", 500, testToday.AddDate(0, 0, -1)),
		expense("2", "rent", 9000, testToday.AddDate(0, 0, -2)),
		expense("3", "food", 700, testToday),
		income("4", "food", 100000, testToday), // income never counts
	}

	result := Summarize(txs, cats, 30, testToday)
	if len(result) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result))
	}
	if result[0].CategoryID != "rent" || result[0].Amount.Cents != 9000 {
		t.Fatalf("expected rent first with 9000, got %+v", result[0])
	}
	if result[1].CategoryID != "food" || result[1].Amount.Cents != 1200 {
		t.Fatalf("expected food with 1200, got %+v", result[1])
	}
	if result[1].CategoryName != "Food" {
		t.Fatalf("expected resolved name Food, got %q", result[1].CategoryName)
	}
}

func TestSummarizeWindowIncludesTodayExcludesOlder(t *testing.T) {
	cats := []core.Category{{ID: "c", Name: "C"}}
	txs := []core.Transaction{
		expense("today", "c", 100, testToday),
		expense("edge", "c", 100, testToday.AddDate(0, 0, -29)),  // still inside a 30-day window
		expense("stale", "c", 100, testToday.AddDate(0, 0, -30)), // one day too old
		expense("future", "c", 100, testToday.AddDate(0, 0, 1)),  // tomorrow is outside
	}
	result := Summarize(txs, cats, 30, testToday)
	if len(result) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result))
	}
	if result[0].Amount.Cents != 200 {
		t.Fatalf("expected sum 200 (today + edge day), got %d", result[0].Amount.Cents)
	}
}

func TestSummarizeSumPreservation(t *testing.T) {
	cats := []core.Category{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	var txs []core.Transaction
	var want int64
	for i := 0; i < 20; i++ {
		cents := int64(100 + i*37)
		id := "a"
		if i%2 == 1 {
			id = "b"
		}
		txs = append(txs, expense(strconv.Itoa(i), id, cents, testToday.AddDate(0, 0, -i%5)))
		want += cents
	}
	var got int64
	for _, row := range Summarize(txs, cats, 30, testToday) {
		got += row.Amount.Cents
	}
	if got != want {
		t.Fatalf("sum not preserved: expected %d, got %d", want, got)
	}
}

func TestSummarizeUnknownCategoryKeepsRow(t *testing.T) {
	txs := []core.Transaction{expense("1", "ghost", 100, testToday)}
	result := Summarize(txs, nil, 30, testToday)
	if len(result) != 1 {
		t.Fatalf("expected row for unresolved category, got %d rows", len(result))
	}
	if result[0].CategoryName != UnknownCategoryName {
		t.Fatalf("expected sentinel name %q, got %q", UnknownCategoryName, result[0].CategoryName)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	if result := Summarize(nil, nil, 30, testToday); len(result) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(result))
	}
}

func TestBuildSeriesCoverage(t *testing.T) {
	for _, months := range []int{1, 3, 12, 24} {
		buckets := BuildSeries(nil, months, testToday)
		if len(buckets) != months {
			t.Fatalf("months=%d: expected %d buckets, got %d", months, months, len(buckets))
		}
		for i, b := range buckets {
			if b.Date.Day() != 1 {
				t.Fatalf("months=%d bucket %d: date %v is not first of month", months, i, b.Date)
			}
			if b.Income.Cents != 0 || b.Expense.Cents != 0 {
				t.Fatalf("months=%d bucket %d: expected zero sums with no data", months, i)
			}
			if i > 0 {
				prev := buckets[i-1].Date
				if next := prev.AddDate(0, 1, 0); !next.Equal(b.Date) {
					t.Fatalf("months=%d: buckets not contiguous at %d (%v -> %v)", months, i, prev, b.Date)
				}
			}
		}
		last := buckets[len(buckets)-1]
		if !core.SameMonth(last.Date, testToday) {
			t.Fatalf("months=%d: series must end at the current month, got %v", months, last.Date)
		}
	}
}

func TestBuildSeriesTrailingYear(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 12; i++ {
		date := testToday.AddDate(0, -i, 0)
		cents := int64((i + 1) * 100)
		txs = append(txs,
			income("in"+strconv.Itoa(i), "c", cents, date),
			expense("out"+strconv.Itoa(i), "c", cents, date),
		)
	}

	buckets := BuildSeries(txs, 12, testToday)
	if len(buckets) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(buckets))
	}
	for i, b := range buckets {
		// buckets are oldest first; transaction i months back lands in bucket 11-i
		wantCents := int64((12 - i) * 100)
		if b.Income.Cents != wantCents {
			t.Fatalf("bucket %d (%s): expected income %d, got %d", i, b.Month, wantCents, b.Income.Cents)
		}
		if b.Expense.Cents != wantCents {
			t.Fatalf("bucket %d (%s): expected expense %d, got %d", i, b.Month, wantCents, b.Expense.Cents)
		}
	}
}

func TestBuildSeriesMonthLabels(t *testing.T) {
	buckets := BuildSeries(nil, 2, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	if buckets[0].Month != "January" || buckets[1].Month != "February" {
		t.Fatalf("expected English month names January/February, got %q/%q", buckets[0].Month, buckets[1].Month)
	}
}

func TestBuildSeriesYearBoundary(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		expense("dec", "c", 500, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)),
		expense("jan", "c", 700, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	buckets := BuildSeries(txs, 2, now)
	if buckets[0].Expense.Cents != 500 {
		t.Fatalf("December bucket: expected 500, got %d", buckets[0].Expense.Cents)
	}
	if buckets[1].Expense.Cents != 700 {
		t.Fatalf("January bucket: expected 700, got %d", buckets[1].Expense.Cents)
	}
}

func TestTopNRankingAndTruncation(t *testing.T) {
	// 20 expenses dated days 0..19 before today, amounts 100..2000
	var txs []core.Transaction
	for i := 1; i <= 20; i++ {
		txs = append(txs, expense(strconv.Itoa(i), "c", int64(i*100), testToday.AddDate(0, 0, -i+1)))
	}
	start := testToday.AddDate(0, 0, -200)

	top5 := TopN(txs, start, testToday, 5)
	if len(top5) != 5 {
		t.Fatalf("expected 5 results, got %d", len(top5))
	}
	for i, want := range []int64{2000, 1900, 1800, 1700, 1600} {
		if top5[i].Amount.Cents != want {
			t.Fatalf("rank %d: expected %d, got %d", i, want, top5[i].Amount.Cents)
		}
	}

	all := TopN(txs, start, testToday, 0)
	if len(all) != 20 {
		t.Fatalf("n=0 must return every qualifying transaction, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Amount.Cents < all[i].Amount.Cents {
			t.Fatalf("ordering violated at %d: %d < %d", i, all[i-1].Amount.Cents, all[i].Amount.Cents)
		}
	}

	if got := TopN(txs, start, testToday, 50); len(got) != 20 {
		t.Fatalf("n beyond result size: expected 20, got %d", len(got))
	}
}

func TestTopNStableTies(t *testing.T) {
	txs := []core.Transaction{
		expense("first", "c", 100, testToday.AddDate(0, 0, -3)),
		expense("second", "c", 100, testToday.AddDate(0, 0, -2)),
		expense("third", "c", 100, testToday.AddDate(0, 0, -1)),
	}
	got := TopN(txs, testToday.AddDate(0, 0, -10), testToday, 0)
	if got[0].ID != "first" || got[1].ID != "second" || got[2].ID != "third" {
		t.Fatalf("equal amounts must keep input order, got %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestTopNRangeAndTypeFilter(t *testing.T) {
	start := testToday.AddDate(0, 0, -5)
	txs := []core.Transaction{
		expense("in", "c", 100, testToday.AddDate(0, 0, -1)),
		expense("onStart", "c", 100, start),
		expense("onEnd", "c", 100, testToday),
		expense("before", "c", 100, start.AddDate(0, 0, -1)),
		expense("after", "c", 100, testToday.AddDate(0, 0, 1)),
		income("income", "c", 100, testToday),
	}
	got := TopN(txs, start, testToday, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 qualifying transactions, got %d", len(got))
	}
	for _, tr := range got {
		if tr.ID == "before" || tr.ID == "after" || tr.ID == "income" {
			t.Fatalf("transaction %s must not qualify", tr.ID)
		}
	}
}

func TestPercentagesSplit(t *testing.T) {
	// 5/3/2 split across 3 categories, equal amounts
	var txs []core.Transaction
	add := func(categoryID string, count int) {
		for i := 0; i < count; i++ {
			txs = append(txs, expense(categoryID+strconv.Itoa(i), categoryID, 100, testToday.AddDate(0, 0, -len(txs))))
		}
	}
	add("food", 5)
	add("rent", 3)
	add("health", 2)

	result := Percentages(txs, testToday.AddDate(0, 0, -200), testToday)
	if len(result) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result))
	}
	want := map[string]float64{"food": 50, "rent": 30, "health": 20}
	var grandTotal int64
	var percentSum float64
	for _, row := range result {
		if row.Percent != want[row.CategoryID] {
			t.Fatalf("%s: expected %.0f%%, got %v", row.CategoryID, want[row.CategoryID], row.Percent)
		}
		grandTotal += row.Total.Cents
		percentSum += row.Percent
	}
	if grandTotal != 1000 {
		t.Fatalf("expected grand total 1000, got %d", grandTotal)
	}
	if percentSum != 100 {
		t.Fatalf("percents must sum to 100, got %v", percentSum)
	}
}

func TestPercentagesSumToHundredUnderAwkwardSplits(t *testing.T) {
	// 1/3 splits never divide evenly; the remainder distribution must absorb
	// the truncation loss.
	txs := []core.Transaction{
		expense("a", "a", 100, testToday),
		expense("b", "b", 100, testToday),
		expense("c", "c", 100, testToday),
	}
	result := Percentages(txs, testToday.AddDate(0, 0, -1), testToday)
	var sum float64
	for _, row := range result {
		sum += row.Percent
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("percents must sum to 100, got %v", sum)
	}
}

func TestPercentagesEmptyWhenNoExpenses(t *testing.T) {
	txs := []core.Transaction{income("1", "c", 100, testToday)}
	if result := Percentages(txs, testToday.AddDate(0, 0, -10), testToday); len(result) != 0 {
		t.Fatalf("expected empty result with no qualifying expenses, got %d rows", len(result))
	}
	if result := Percentages(nil, testToday.AddDate(0, 0, -10), testToday); len(result) != 0 {
		t.Fatalf("expected empty result for empty input, got %d rows", len(result))
	}

	// The empty report must encode as [] and not null.
	raw, err := json.Marshal(Percentages(nil, testToday.AddDate(0, 0, -10), testToday))
	if err != nil {
		t.Fatalf("marshal empty result: %v", err)
	}
	if string(raw) != "[]" {
		t.Fatalf("empty result encodes as %s, want []", raw)
	}
}
