package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		input string
		want  YearMonth
	}{
		{"2024-06", YearMonth{2024, 6}},
		{"2024-06-15", YearMonth{2024, 6}},
		{"2024-06-15T10:30:00Z", YearMonth{2024, 6}},
		{"1999-12", YearMonth{1999, 12}},
	}
	for _, tc := range tests {
		got, err := ParseYearMonth(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}
}

func TestParseYearMonth_Invalid(t *testing.T) {
	for _, input := range []string{"", "現在", "2024", "2024-13", "06-2024", "not a date"} {
		_, err := ParseYearMonth(input)
		assert.Error(t, err, input)
	}
}

func TestYearMonth_MonthsSince(t *testing.T) {
	start := YearMonth{2020, 1}
	assert.Equal(t, 0, start.MonthsSince(start))
	assert.Equal(t, 53, YearMonth{2024, 6}.MonthsSince(start))
	assert.Equal(t, -1, YearMonth{2019, 12}.MonthsSince(start))
}

func TestYearMonth_Before(t *testing.T) {
	assert.True(t, YearMonth{2020, 1}.Before(YearMonth{2020, 2}))
	assert.True(t, YearMonth{2019, 12}.Before(YearMonth{2020, 1}))
	assert.False(t, YearMonth{2020, 2}.Before(YearMonth{2020, 2}))
}

func TestYearMonth_String(t *testing.T) {
	assert.Equal(t, "2024-06", YearMonth{2024, 6}.String())
	assert.Equal(t, "0999-01", YearMonth{999, 1}.String())
}

func TestYearMonthOf(t *testing.T) {
	ym := YearMonthOf(time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, YearMonth{2025, 6}, ym)
	assert.False(t, ym.IsZero())
	assert.True(t, YearMonth{}.IsZero())
}
