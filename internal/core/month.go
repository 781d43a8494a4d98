package core

import (
	"fmt"
	"time"
)

// Month identifies a calendar month. Activity checks compare months, never
// full dates.
type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year int, month time.Month) (Month, error) {
	if month < time.January || month > time.December {
		return Month{}, fmt.Errorf("%w: month %d out of range", ErrInvalidArgument, month)
	}
	if year < 1 {
		return Month{}, fmt.Errorf("%w: year %d out of range", ErrInvalidArgument, year)
	}
	return Month{Year: year, Month: month}, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Compare returns -1, 0 or +1 ordering by year then month.
func (m Month) Compare(other Month) int {
	switch {
	case m.Year < other.Year:
		return -1
	case m.Year > other.Year:
		return 1
	case m.Month < other.Month:
		return -1
	case m.Month > other.Month:
		return 1
	}
	return 0
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q is not a YYYY-MM month", ErrInvalidArgument, s)
	}
	return MonthOf(t), nil
}

// monthsBetween counts the months from start to end, both inclusive.
func monthsBetween(start, end Month) int {
	return (end.Year-start.Year)*12 + int(end.Month-start.Month) + 1
}
