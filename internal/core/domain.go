package core

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

const (
	MaxDescriptionLength  = 255
	MaxCategoryNameLength = 50
	MinPasswordLength     = 6
	DefaultCountry        = "United States"
)

type (
	TxType string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string    `json:"id"`
		OwnerID     string    `json:"owner_id"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount"`
		Type        TxType    `json:"type"`
		Category    string    `json:"category"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"created_at"`
	}

	Category struct {
		ID        string    `json:"id"`
		OwnerID   string    `json:"owner_id"`
		Name      string    `json:"name"`
		Color     string    `json:"color"`
		CreatedAt time.Time `json:"created_at"`
	}

	User struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Password  string    `json:"-"`
		Country   string    `json:"country"`
		CreatedAt time.Time `json:"created_at"`
	}
)

// ParseTxType accepts Income/Expense in any letter case.
func ParseTxType(s string) (TxType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, true
	case "expense":
		return Expense, true
	}
	return "", false
}

func (t Transaction) IsIncome() bool  { return t.Type == Income }
func (t Transaction) IsExpense() bool { return t.Type != Income }

// Sign is +1 for income and -1 for expenses.
func (t Transaction) Sign() float64 {
	if t.IsIncome() {
		return 1
	}
	return -1
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date in the timestamp's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// AddDays returns the date n calendar days later (earlier when n < 0).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NormalizeEmail lowercases and trims, the form every stored email has.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
