package core

import (
	"fmt"
	"strings"
)

const (
	VariantSimple Variant = "simple"
	VariantRich   Variant = "rich"

	WindowRolling  WindowMode = "rolling"
	WindowCalendar WindowMode = "calendar"

	MatchCaseInsensitive MatchMode = "insensitive"
	MatchCaseSensitive   MatchMode = "sensitive"

	OrderInsertion    OrderMode = "insertion"
	OrderAlphabetical OrderMode = "alphabetical"
)

type (
	// Variant selects how records are typed and totalled.
	Variant string

	// WindowMode selects rolling windows ending now or calendar-aligned windows.
	WindowMode string

	// MatchMode selects how category names are compared.
	MatchMode string

	// OrderMode selects how the category registry lists its entries.
	OrderMode string

	// Policy bundles the behaviors on which the two application variants disagree.
	Policy struct {
		Variant             Variant
		Window              WindowMode
		CategoryMatch       MatchMode
		CategoryOrder       OrderMode
		RequireLiveCategory bool
	}
)

// SimplePolicy reproduces the in-memory demo: untyped expenses, calendar month
// filtering, case-insensitive duplicate checks, insertion-ordered registry.
func SimplePolicy() Policy {
	return Policy{
		Variant:       VariantSimple,
		Window:        WindowCalendar,
		CategoryMatch: MatchCaseInsensitive,
		CategoryOrder: OrderInsertion,
	}
}

// RichPolicy reproduces the hosted variant: typed transactions, rolling
// windows, case-sensitive names, alphabetical listing, live category check.
func RichPolicy() Policy {
	return Policy{
		Variant:             VariantRich,
		Window:              WindowRolling,
		CategoryMatch:       MatchCaseSensitive,
		CategoryOrder:       OrderAlphabetical,
		RequireLiveCategory: true,
	}
}

// PolicyFor returns the preset for a variant name.
func PolicyFor(v Variant) (Policy, error) {
	switch v {
	case VariantSimple:
		return SimplePolicy(), nil
	case VariantRich:
		return RichPolicy(), nil
	}
	return Policy{}, fmt.Errorf("unknown ledger variant %q", v)
}

func (p Policy) Validate() error {
	switch p.Variant {
	case VariantSimple, VariantRich:
	default:
		return fmt.Errorf("unknown ledger variant %q", p.Variant)
	}
	switch p.Window {
	case WindowRolling, WindowCalendar:
	default:
		return fmt.Errorf("unknown window mode %q", p.Window)
	}
	switch p.CategoryMatch {
	case MatchCaseInsensitive, MatchCaseSensitive:
	default:
		return fmt.Errorf("unknown category match mode %q", p.CategoryMatch)
	}
	switch p.CategoryOrder {
	case OrderInsertion, OrderAlphabetical:
	default:
		return fmt.Errorf("unknown category order %q", p.CategoryOrder)
	}
	return nil
}

// SameName compares two category names under the match mode.
func (m MatchMode) SameName(a, b string) bool {
	if m == MatchCaseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
