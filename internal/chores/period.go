package chores

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a calendar month, written YYYY-MM.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a YYYY-MM string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Next returns the following period. December rolls over to January.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date formats day of the period as YYYY-MM-DD, clamping day into 1..Days().
func (p Period) Date(day int) string {
	if day < 1 {
		day = 1
	}
	if n := p.Days(); day > n {
		day = n
	}
	return fmt.Sprintf("%s-%02d", p, day)
}

// dayOfMonth extracts the day from a YYYY-MM-DD string, or 0.
func dayOfMonth(date string) int {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0
	}
	return d
}
