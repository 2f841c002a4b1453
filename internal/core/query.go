package core

import (
	"sort"
	"strings"
)

const (
	SortByDate   SortKey = "date"
	SortByAmount SortKey = "amount"

	// TypeAll passes every record through the type filter.
	TypeAll = "all"
)

type (
	SortKey string

	// Query selects and orders a transaction listing.
	Query struct {
		Search string
		Type   TxType // empty means all
		SortBy SortKey
	}
)

// ParseQuery validates raw listing parameters. Empty values take defaults:
// no search, all types, newest date first.
func ParseQuery(search, typeFilter, sortBy string) (Query, error) {
	q := Query{Search: strings.TrimSpace(search), SortBy: SortByDate}

	if tf := strings.TrimSpace(typeFilter); tf != "" && !strings.EqualFold(tf, TypeAll) {
		t, ok := ParseTxType(tf)
		if !ok {
			return Query{}, ErrInvalidFilter
		}
		q.Type = t
	}

	switch SortKey(strings.ToLower(strings.TrimSpace(sortBy))) {
	case "", SortByDate:
	case SortByAmount:
		q.SortBy = SortByAmount
	default:
		return Query{}, ErrInvalidFilter
	}
	return q, nil
}

// FilterAndSort returns a new slice with the matching records in query order.
// Ties keep their input order.
func FilterAndSort(records []Transaction, q Query) []Transaction {
	term := strings.ToLower(q.Search)
	out := make([]Transaction, 0, len(records))
	for _, r := range records {
		if q.Type != "" && r.Type != q.Type {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Description), term) &&
			!strings.Contains(strings.ToLower(r.Category), term) {
			continue
		}
		out = append(out, r)
	}

	if q.SortBy == SortByAmount {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	}
	return out
}
