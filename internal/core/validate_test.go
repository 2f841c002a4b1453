package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func testCategories() []Category {
	return []Category{
		{ID: "c1", Name: "Food & Dining", Color: "#8B5CF6"},
		{ID: "c2", Name: "Rent", Color: "#10B981"},
	}
}

func TestValidateTransaction_Valid(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   float64
	}{
		{"dot decimals", "4.50", 4.5},
		{"comma decimals", "4,50", 4.5},
		{"integer", "1000", 1000},
		{"surrounding space", "  12.34 ", 12.34},
		{"tiny", "0.01", 0.01},
		{"exponent", "1e3", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := TransactionInput{Description: "  Coffee  ", Amount: tt.amount, Category: "Food & Dining"}
			got, err := ValidateTransaction(in, testCategories(), SimplePolicy(), testNow)
			if err != nil {
				t.Fatalf("ValidateTransaction() error = %v", err)
			}
			if got.Amount != tt.want {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.want)
			}
			if got.Description != "Coffee" {
				t.Errorf("Description = %q, want %q", got.Description, "Coffee")
			}
			if got.Type != Expense {
				t.Errorf("Type = %q, want Expense", got.Type)
			}
			if got.Date != NewDate(2024, 3, 15) {
				t.Errorf("Date = %v, want today", got.Date)
			}
		})
	}
}

func TestValidateTransaction_InvalidAmount(t *testing.T) {
	for _, amount := range []string{"", "0", "0.00", "-5.00", "abc", "NaN", "Inf", "1e400", "12.3.4", "0x1p3", "0X10", "+0x1p3"} {
		t.Run(amount, func(t *testing.T) {
			in := TransactionInput{Description: "Coffee", Amount: amount, Category: "Food & Dining"}
			_, err := ValidateTransaction(in, testCategories(), SimplePolicy(), testNow)
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("ValidateTransaction(%q) error = %v, want ErrInvalidAmount", amount, err)
			}
		})
	}
}

func TestValidateTransaction_Order(t *testing.T) {
	tests := []struct {
		name string
		in   TransactionInput
		want error
	}{
		{
			name: "everything wrong reports description",
			in:   TransactionInput{Description: "   ", Amount: "-1"},
			want: ErrEmptyDescription,
		},
		{
			name: "amount before category",
			in:   TransactionInput{Description: "x", Amount: "zero"},
			want: ErrInvalidAmount,
		},
		{
			name: "missing category",
			in:   TransactionInput{Description: "x", Amount: "1", Category: "  "},
			want: ErrMissingCategory,
		},
		{
			name: "description too long",
			in:   TransactionInput{Description: strings.Repeat("a", MaxDescriptionLength+1), Amount: "1", Category: "Rent"},
			want: ErrDescriptionTooLong,
		},
		{
			name: "bad date",
			in:   TransactionInput{Description: "x", Amount: "1", Category: "Rent", Date: "15/03/2024"},
			want: ErrInvalidDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTransaction(tt.in, testCategories(), RichPolicy(), testNow)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateTransaction_LiveCategory(t *testing.T) {
	in := TransactionInput{Description: "Lunch", Amount: "9", Category: "Groceries"}

	// The simple variant accepts any non-empty category.
	if _, err := ValidateTransaction(in, testCategories(), SimplePolicy(), testNow); err != nil {
		t.Fatalf("simple policy: unexpected error %v", err)
	}
	if _, err := ValidateTransaction(in, testCategories(), RichPolicy(), testNow); !errors.Is(err, ErrMissingCategory) {
		t.Fatalf("rich policy: error = %v, want ErrMissingCategory", err)
	}

	// Case-sensitive rich matching rejects a different spelling.
	in.Category = "rent"
	if _, err := ValidateTransaction(in, testCategories(), RichPolicy(), testNow); !errors.Is(err, ErrMissingCategory) {
		t.Fatalf("rich policy, lower case: error = %v, want ErrMissingCategory", err)
	}

	// With insensitive matching the canonical spelling is stored.
	p := RichPolicy()
	p.CategoryMatch = MatchCaseInsensitive
	got, err := ValidateTransaction(in, testCategories(), p, testNow)
	if err != nil {
		t.Fatalf("insensitive: unexpected error %v", err)
	}
	if got.Category != "Rent" {
		t.Errorf("Category = %q, want %q", got.Category, "Rent")
	}
}

func TestValidateTransaction_Type(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		policy  Policy
		want    TxType
		wantErr error
	}{
		{"rich empty defaults to expense", "", RichPolicy(), Expense, nil},
		{"rich income", "income", RichPolicy(), Income, nil},
		{"rich expense", "Expense", RichPolicy(), Expense, nil},
		{"rich unknown", "transfer", RichPolicy(), "", ErrInvalidType},
		{"simple ignores type", "Income", SimplePolicy(), Expense, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := TransactionInput{Description: "Salary", Amount: "100", Category: "Rent", Type: tt.typ, Date: "2024-03-01"}
			got, err := ValidateTransaction(in, testCategories(), tt.policy, testNow)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	ids := 0
	newID := func() string { ids++; return "u" + string(rune('0'+ids)) }

	first, err := ValidateRegistration(RegistrationInput{Username: " alice ", Email: " A@x.com ", Password: "secret"}, nil, newID)
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if first.Email != "a@x.com" || first.Username != "alice" || first.ID != "u1" {
		t.Errorf("normalized user = %+v", first)
	}
	if first.Country != DefaultCountry {
		t.Errorf("Country = %q, want %q", first.Country, DefaultCountry)
	}

	tests := []struct {
		name string
		in   RegistrationInput
		want error
	}{
		{"duplicate email differs in case", RegistrationInput{Username: "bob", Email: "a@x.com", Password: "secret"}, ErrEmailTaken},
		{"missing username", RegistrationInput{Email: "b@x.com", Password: "secret"}, ErrMissingFields},
		{"missing password", RegistrationInput{Username: "bob", Email: "b@x.com"}, ErrMissingFields},
		{"short password", RegistrationInput{Username: "bob", Email: "b@x.com", Password: "12345"}, ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRegistration(tt.in, []User{first}, newID)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

type equalMatcher struct{}

func (equalMatcher) Matches(stored, password string) bool { return stored == password }

func TestValidateLogin(t *testing.T) {
	users := []User{{ID: "u1", Email: "a@x.com", Password: "secret"}}

	tests := []struct {
		name    string
		in      LoginInput
		wantID  string
		wantErr error
	}{
		{"match", LoginInput{Email: "a@x.com", Password: "secret"}, "u1", nil},
		{"email normalized", LoginInput{Email: " A@X.com", Password: "secret"}, "u1", nil},
		{"wrong password", LoginInput{Email: "a@x.com", Password: "Secret"}, "", ErrInvalidCredentials},
		{"unknown email", LoginInput{Email: "b@x.com", Password: "secret"}, "", ErrInvalidCredentials},
		{"missing email", LoginInput{Password: "secret"}, "", ErrMissingCredentials},
		{"missing password", LoginInput{Email: "a@x.com"}, "", ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateLogin(tt.in, users, equalMatcher{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestValidateCategoryName(t *testing.T) {
	if got, err := ValidateCategoryName("  Travel "); err != nil || got != "Travel" {
		t.Errorf("ValidateCategoryName() = %q, %v", got, err)
	}
	if _, err := ValidateCategoryName("   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty: error = %v, want ErrEmptyName", err)
	}
	if _, err := ValidateCategoryName(strings.Repeat("x", MaxCategoryNameLength+1)); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("long: error = %v, want ErrNameTooLong", err)
	}
}

func TestKindOf(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrCategoryInUse)
	if got := KindOf(wrapped); got != KindCategoryInUse {
		t.Errorf("KindOf() = %q, want %q", got, KindCategoryInUse)
	}
	if got := KindOf(errors.New("disk full")); got != "" {
		t.Errorf("KindOf(infra) = %q, want empty", got)
	}
}
