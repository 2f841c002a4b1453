package core

import (
	"strings"
	"time"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

type Period string

// ParsePeriod accepts a period name in any case; empty means monthly.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Monthly, nil
	case Daily, Weekly, Monthly, Yearly:
		return p, nil
	}
	return "", ErrInvalidPeriod
}

// PeriodWindow is the strategy interface for period membership. Each period
// has a rolling and a calendar implementation, chosen by WindowFor.
type PeriodWindow interface {
	// Contains reports whether d falls inside the window that ends on today.
	Contains(d, today Date) bool
}

// RollingWindow keeps dates in [today - back, today].
type RollingWindow struct {
	Years, Months, Days int
}

func (w RollingWindow) Contains(d, today Date) bool {
	start := today.AddDate(-w.Years, -w.Months, -w.Days)
	return !d.Before(start) && !d.After(today.Time)
}

// CalendarDay keeps dates equal to today.
type CalendarDay struct{}

func (CalendarDay) Contains(d, today Date) bool {
	return d.Equal(today.Time)
}

// CalendarWeek keeps dates in the same ISO week as today.
type CalendarWeek struct{}

func (CalendarWeek) Contains(d, today Date) bool {
	dy, dw := d.ISOWeek()
	ty, tw := today.ISOWeek()
	return dy == ty && dw == tw
}

// CalendarMonth keeps dates in the same month and year as today.
type CalendarMonth struct{}

func (CalendarMonth) Contains(d, today Date) bool {
	return d.Year() == today.Year() && d.Month() == today.Month()
}

// CalendarYear keeps dates in the same year as today.
type CalendarYear struct{}

func (CalendarYear) Contains(d, today Date) bool {
	return d.Year() == today.Year()
}

// WindowFor picks the strategy for a period under a window mode.
func WindowFor(p Period, mode WindowMode) (PeriodWindow, error) {
	if mode == WindowCalendar {
		switch p {
		case Daily:
			return CalendarDay{}, nil
		case Weekly:
			return CalendarWeek{}, nil
		case Monthly:
			return CalendarMonth{}, nil
		case Yearly:
			return CalendarYear{}, nil
		}
		return nil, ErrInvalidPeriod
	}
	switch p {
	case Daily:
		return RollingWindow{}, nil
	case Weekly:
		return RollingWindow{Days: 7}, nil
	case Monthly:
		return RollingWindow{Months: 1}, nil
	case Yearly:
		return RollingWindow{Years: 1}, nil
	}
	return nil, ErrInvalidPeriod
}

// PeriodFilter returns the records whose logical date falls inside the period
// window ending at now. The input slice is not modified.
func PeriodFilter(records []Transaction, p Period, now time.Time, mode WindowMode) ([]Transaction, error) {
	w, err := WindowFor(p, mode)
	if err != nil {
		return nil, err
	}
	today := DateOf(now)
	out := make([]Transaction, 0, len(records))
	for _, r := range records {
		if w.Contains(r.Date, today) {
			out = append(out, r)
		}
	}
	return out, nil
}
