package types

import (
	"fmt"
	"time"
)

// YearMonth is a calendar month used for tenure math. The zero value is not
// a valid month; use ParseYearMonth or YearMonthOf.
type YearMonth struct {
	Year  int
	Month int
}

// YearMonthOf truncates a time to its calendar month.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// ParseYearMonth parses "YYYY-MM" or any ISO-8601 date/datetime string by
// reading its year and month. Returns an error for anything else.
func ParseYearMonth(value string) (YearMonth, error) {
	if len(value) >= 7 && value[4] == '-' {
		var year, month int
		if _, err := fmt.Sscanf(value[:7], "%4d-%2d", &year, &month); err == nil {
			if month >= 1 && month <= 12 {
				return YearMonth{Year: year, Month: month}, nil
			}
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return YearMonthOf(t), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return YearMonthOf(t), nil
	}
	return YearMonth{}, fmt.Errorf("unparseable year-month %q", value)
}

// IsZero reports whether ym is the zero value.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// MonthsSince returns the number of whole months from start to ym. Negative
// when ym precedes start.
func (ym YearMonth) MonthsSince(start YearMonth) int {
	return (ym.Year-start.Year)*12 + (ym.Month - start.Month)
}

// Before reports whether ym precedes other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// String renders the month in "YYYY-MM" form.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}
