package core

import (
	"sort"
	"time"
)

// DashboardRecentCount is how many records the dashboard lists.
const DashboardRecentCount = 5

type (
	Totals struct {
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
		Balance float64 `json:"balance"`
	}

	// CategoryTotal is one chart slice: {name, value, colorHint}.
	CategoryTotal struct {
		Name  string  `json:"name"`
		Total float64 `json:"value"`
		Color string  `json:"color"`
	}

	Dashboard struct {
		Period    Period          `json:"period"`
		Totals    Totals          `json:"totals"`
		Total     float64         `json:"total"`
		Count     int             `json:"count"`
		Breakdown []CategoryTotal `json:"breakdown"`
		Recent    []Transaction   `json:"recent"`
	}
)

// Summarize splits records into income and expense sums.
func Summarize(records []Transaction) Totals {
	var t Totals
	for _, r := range records {
		if r.IsIncome() {
			t.Income += r.Amount
		} else {
			t.Expense += r.Amount
		}
	}
	t.Balance = t.Income - t.Expense
	return t
}

// Total is the headline figure: the plain sum of amounts for the simple
// variant, income minus expense for the rich one.
func Total(records []Transaction, v Variant) float64 {
	if v == VariantRich {
		return Summarize(records).Balance
	}
	var sum float64
	for _, r := range records {
		sum += r.Amount
	}
	return sum
}

// ByCategory groups amounts by category name. Registry categories come first
// in the given order; names unknown to the registry follow in first-seen
// order with palette colors. Groups without records are omitted.
func ByCategory(records []Transaction, categories []Category) []CategoryTotal {
	sums := make(map[string]float64, len(categories))
	var unknown []string
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.Name] = true
	}
	for _, r := range records {
		if _, seen := sums[r.Category]; !seen && !known[r.Category] {
			unknown = append(unknown, r.Category)
		}
		sums[r.Category] += r.Amount
	}

	out := make([]CategoryTotal, 0, len(sums))
	for _, c := range categories {
		if total, ok := sums[c.Name]; ok {
			out = append(out, CategoryTotal{Name: c.Name, Total: total, Color: c.Color})
			delete(sums, c.Name)
		}
	}
	for i, name := range unknown {
		out = append(out, CategoryTotal{Name: name, Total: sums[name], Color: PaletteColor(len(categories) + i)})
	}
	return out
}

// ExpenseBreakdown is ByCategory over expense records only.
func ExpenseBreakdown(records []Transaction, categories []Category) []CategoryTotal {
	expenses := make([]Transaction, 0, len(records))
	for _, r := range records {
		if r.IsExpense() {
			expenses = append(expenses, r)
		}
	}
	return ByCategory(expenses, categories)
}

// Recent returns at most n records, newest CreatedAt first. A non-empty
// typeFilter keeps only records of that type.
func Recent(records []Transaction, n int, typeFilter TxType) []Transaction {
	out := make([]Transaction, 0, len(records))
	for _, r := range records {
		if typeFilter == "" || r.Type == typeFilter {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// BuildDashboard computes the dashboard view-model for one period.
func BuildDashboard(records []Transaction, categories []Category, period Period, now time.Time, p Policy) (Dashboard, error) {
	inPeriod, err := PeriodFilter(records, period, now, p.Window)
	if err != nil {
		return Dashboard{}, err
	}
	recent := FilterAndSort(inPeriod, Query{SortBy: SortByDate})
	if len(recent) > DashboardRecentCount {
		recent = recent[:DashboardRecentCount]
	}
	return Dashboard{
		Period:    period,
		Totals:    Summarize(inPeriod),
		Total:     Total(inPeriod, p.Variant),
		Count:     len(inPeriod),
		Breakdown: ExpenseBreakdown(inPeriod, categories),
		Recent:    recent,
	}, nil
}
