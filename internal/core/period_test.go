package core

import (
	"errors"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
		err  error
	}{
		{"", Monthly, nil},
		{"daily", Daily, nil},
		{"WEEKLY", Weekly, nil},
		{" yearly ", Yearly, nil},
		{"hourly", "", ErrInvalidPeriod},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if !errors.Is(err, tt.err) || got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, %v; want %q, %v", tt.in, got, err, tt.want, tt.err)
		}
	}
}

// Rolling and calendar windows disagree near period boundaries; both modes
// are exercised on the same dates.
func TestPeriodWindows(t *testing.T) {
	// Wednesday, ISO week 11.
	now := time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		period   Period
		date     Date
		rolling  bool
		calendar bool
	}{
		{"daily today", Daily, NewDate(2024, 3, 13), true, true},
		{"daily yesterday", Daily, NewDate(2024, 3, 12), false, false},
		{"weekly 7 days back", Weekly, NewDate(2024, 3, 6), true, false},
		{"weekly 8 days back", Weekly, NewDate(2024, 3, 5), false, false},
		{"weekly monday same week", Weekly, NewDate(2024, 3, 11), true, true},
		{"weekly later this week", Weekly, NewDate(2024, 3, 16), false, true},
		{"monthly one month back", Monthly, NewDate(2024, 2, 13), true, false},
		{"monthly past month start", Monthly, NewDate(2024, 2, 12), false, false},
		{"monthly first of month", Monthly, NewDate(2024, 3, 1), true, true},
		{"monthly future day", Monthly, NewDate(2024, 3, 30), false, true},
		{"yearly one year back", Yearly, NewDate(2023, 3, 13), true, false},
		{"yearly last december", Yearly, NewDate(2023, 12, 31), true, false},
		{"yearly january", Yearly, NewDate(2024, 1, 1), true, true},
		{"yearly too old", Yearly, NewDate(2023, 3, 12), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []Transaction{{ID: "x", Date: tt.date}}

			rolling, err := PeriodFilter(records, tt.period, now, WindowRolling)
			if err != nil {
				t.Fatalf("rolling: %v", err)
			}
			if got := len(rolling) == 1; got != tt.rolling {
				t.Errorf("rolling kept = %v, want %v", got, tt.rolling)
			}

			calendar, err := PeriodFilter(records, tt.period, now, WindowCalendar)
			if err != nil {
				t.Fatalf("calendar: %v", err)
			}
			if got := len(calendar) == 1; got != tt.calendar {
				t.Errorf("calendar kept = %v, want %v", got, tt.calendar)
			}
		})
	}
}

func TestPeriodFilter_InvalidPeriod(t *testing.T) {
	if _, err := PeriodFilter(nil, Period("x"), time.Now(), WindowRolling); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("error = %v, want ErrInvalidPeriod", err)
	}
}
