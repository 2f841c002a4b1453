package core

import (
	"math"
	"testing"
	"time"
)

func tx(id, desc string, amount float64, typ TxType, category string, date Date) Transaction {
	return Transaction{ID: id, OwnerID: "u1", Description: desc, Amount: amount, Type: typ, Category: category, Date: date}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTotal_Variants(t *testing.T) {
	records := []Transaction{
		tx("1", "Salary", 2000, Income, "Salary", NewDate(2024, 3, 1)),
		tx("2", "Rent", 800, Expense, "Rent", NewDate(2024, 3, 2)),
		tx("3", "Coffee", 4.5, Expense, "Food & Dining", NewDate(2024, 3, 3)),
	}
	if got := Total(records, VariantSimple); !almostEqual(got, 2804.5) {
		t.Errorf("Total(simple) = %v, want 2804.5", got)
	}
	if got := Total(records, VariantRich); !almostEqual(got, 1195.5) {
		t.Errorf("Total(rich) = %v, want 1195.5", got)
	}

	s := Summarize(records)
	if !almostEqual(s.Income, 2000) || !almostEqual(s.Expense, 804.5) || !almostEqual(s.Balance, 1195.5) {
		t.Errorf("Summarize() = %+v", s)
	}
}

func TestTotal_SingleCoffee(t *testing.T) {
	records := []Transaction{tx("1", "Coffee", 4.50, Expense, "Food & Dining", NewDate(2024, 3, 3))}
	if got := FormatAmount(Total(records, VariantSimple)); got != "4.50" {
		t.Errorf("Total = %s, want 4.50", got)
	}
}

func TestTotal_OrderInvariantAndMatchesByCategory(t *testing.T) {
	records := []Transaction{
		tx("1", "a", 0.1, Expense, "Food & Dining", NewDate(2024, 3, 1)),
		tx("2", "b", 0.2, Expense, "Rent", NewDate(2024, 3, 1)),
		tx("3", "c", 0.3, Expense, "Food & Dining", NewDate(2024, 3, 1)),
		tx("4", "d", 12.75, Expense, "Gifts", NewDate(2024, 3, 1)),
	}
	reversed := make([]Transaction, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	forward := Total(records, VariantSimple)
	if backward := Total(reversed, VariantSimple); !almostEqual(forward, backward) {
		t.Errorf("Total depends on order: %v vs %v", forward, backward)
	}

	var byCat float64
	for _, ct := range ByCategory(records, testCategories()) {
		byCat += ct.Total
	}
	if !almostEqual(forward, byCat) {
		t.Errorf("Total = %v, sum(ByCategory) = %v", forward, byCat)
	}
}

func TestByCategory(t *testing.T) {
	records := []Transaction{
		tx("1", "Gift", 10, Expense, "Gifts", NewDate(2024, 3, 1)),
		tx("2", "Flat", 900, Expense, "Rent", NewDate(2024, 3, 1)),
		tx("3", "Book", 5, Expense, "Gifts", NewDate(2024, 3, 1)),
	}
	got := ByCategory(records, testCategories())

	want := []CategoryTotal{
		{Name: "Rent", Total: 900, Color: "#10B981"},
		{Name: "Gifts", Total: 15, Color: Palette[2]},
	}
	if len(got) != len(want) {
		t.Fatalf("ByCategory() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ByCategory()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExpenseBreakdown_SkipsIncome(t *testing.T) {
	records := []Transaction{
		tx("1", "Salary", 2000, Income, "Rent", NewDate(2024, 3, 1)),
		tx("2", "Flat", 900, Expense, "Rent", NewDate(2024, 3, 1)),
	}
	got := ExpenseBreakdown(records, testCategories())
	if len(got) != 1 || got[0].Total != 900 {
		t.Errorf("ExpenseBreakdown() = %+v", got)
	}
}

func TestRecent(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var records []Transaction
	for i := 0; i < 6; i++ {
		r := tx(string(rune('a'+i)), "r", float64(i+1), Expense, "Rent", NewDate(2024, 3, 1))
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if i%2 == 0 {
			r.Type = Income
		}
		records = append(records, r)
	}

	got := Recent(records, 3, "")
	if len(got) != 3 || got[0].ID != "f" || got[2].ID != "d" {
		t.Errorf("Recent(3) ids = %v", ids(got))
	}
	incomes := Recent(records, 10, Income)
	if len(incomes) != 3 || incomes[0].ID != "e" {
		t.Errorf("Recent(Income) ids = %v", ids(incomes))
	}
	if records[0].ID != "a" {
		t.Error("Recent reordered its input")
	}
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	var records []Transaction
	for day := 1; day <= 7; day++ {
		records = append(records, tx(string(rune('0'+day)), "x", 10, Expense, "Rent", NewDate(2024, 3, day)))
	}
	records = append(records, tx("old", "x", 99, Expense, "Rent", NewDate(2023, 12, 1)))

	d, err := BuildDashboard(records, testCategories(), Monthly, now, SimplePolicy())
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}
	if d.Count != 7 || !almostEqual(d.Total, 70) {
		t.Errorf("Count = %d, Total = %v", d.Count, d.Total)
	}
	if len(d.Recent) != DashboardRecentCount || d.Recent[0].ID != "7" {
		t.Errorf("Recent ids = %v", ids(d.Recent))
	}
	if len(d.Breakdown) != 1 || d.Breakdown[0].Name != "Rent" {
		t.Errorf("Breakdown = %+v", d.Breakdown)
	}

	if _, err := BuildDashboard(records, nil, Period("hourly"), now, SimplePolicy()); err != ErrInvalidPeriod {
		t.Errorf("unknown period error = %v, want ErrInvalidPeriod", err)
	}
}

func ids(records []Transaction) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
