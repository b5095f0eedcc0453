package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBudgetPeriodEndDate(t *testing.T) {
	tests := []struct {
		name   string
		period BudgetPeriod
		start  time.Time
		want   time.Time
		ok     bool
	}{
		{"daily", BudgetPeriodDaily, date(2024, time.March, 1), date(2024, time.March, 2), true},
		{"weekly", BudgetPeriodWeekly, date(2024, time.March, 1), date(2024, time.March, 8), true},
		{"monthly", BudgetPeriodMonthly, date(2024, time.March, 1), date(2024, time.April, 1), true},
		{"yearly", BudgetPeriodYearly, date(2024, time.March, 1), date(2025, time.March, 1), true},
		{"custom_has_no_derived_end", BudgetPeriodCustom, date(2024, time.March, 1), time.Time{}, false},

		// Month-end starts must clamp, never roll over into the next month.
		{"monthly_jan31_leap_year", BudgetPeriodMonthly, date(2024, time.January, 31), date(2024, time.February, 29), true},
		{"monthly_jan31_non_leap", BudgetPeriodMonthly, date(2023, time.January, 31), date(2023, time.February, 28), true},
		{"monthly_mar31", BudgetPeriodMonthly, date(2024, time.March, 31), date(2024, time.April, 30), true},
		{"monthly_dec31_wraps_year", BudgetPeriodMonthly, date(2023, time.December, 31), date(2024, time.January, 31), true},
		{"yearly_feb29", BudgetPeriodYearly, date(2024, time.February, 29), date(2025, time.February, 28), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.period.EndDate(tt.start)
			if ok != tt.ok {
				t.Fatalf("EndDate ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("EndDate = %s, want %s", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestBudgetPeriodEndDatePreservesClock(t *testing.T) {
	start := time.Date(2024, time.January, 31, 13, 45, 30, 0, time.UTC)
	got, ok := BudgetPeriodMonthly.EndDate(start)
	if !ok {
		t.Fatal("expected derived end date")
	}
	want := time.Date(2024, time.February, 29, 13, 45, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("EndDate = %s, want %s", got, want)
	}
}

func TestBudgetPeriodValid(t *testing.T) {
	for _, p := range []BudgetPeriod{BudgetPeriodDaily, BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly, BudgetPeriodCustom} {
		if !p.Valid() {
			t.Errorf("expected %q to be valid", p)
		}
	}
	if BudgetPeriod("quarterly").Valid() {
		t.Error("expected quarterly to be invalid")
	}
}
