package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"mid-month", date(2025, time.June, 15), 3, date(2025, time.September, 15)},
		{"jan 31 clamps to apr 30", date(2025, time.January, 31), 3, date(2025, time.April, 30)},
		{"nov 30 into feb non-leap", date(2024, time.November, 30), 3, date(2025, time.February, 28)},
		{"nov 30 into feb leap", date(2023, time.November, 30), 3, date(2024, time.February, 29)},
		{"year rollover", date(2025, time.December, 10), 3, date(2026, time.March, 10)},
		{"oct 31 clamps to nov 30", date(2025, time.October, 31), 1, date(2025, time.November, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonthsClamped(tt.start, tt.months)
			if !got.Equal(tt.want) {
				t.Errorf("AddMonthsClamped(%v, %d) = %v, want %v", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestWindowEndPreservesClock(t *testing.T) {
	start := time.Date(2025, time.March, 31, 23, 59, 58, 123, time.UTC)
	end := WindowEnd(start)
	if end.Month() != time.June || end.Day() != 30 {
		t.Fatalf("WindowEnd(%v) = %v, want June 30", start, end)
	}
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 58 {
		t.Errorf("WindowEnd dropped the time of day: %v", end)
	}
}
