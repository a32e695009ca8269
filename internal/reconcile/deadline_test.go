package reconcile

import (
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 14, 30, 0, 0, time.UTC)
}

func TestShippingDeadlineSkipsWeekends(t *testing.T) {
	cases := []struct {
		name   string
		paidAt time.Time
		days   int
		want   time.Time
	}{
		{
			name:   "monday plus three lands thursday",
			paidAt: date(2026, time.March, 2),
			days:   3,
			want:   date(2026, time.March, 5),
		},
		{
			name:   "wednesday plus three crosses the weekend",
			paidAt: date(2026, time.March, 4),
			days:   3,
			want:   date(2026, time.March, 9),
		},
		{
			name:   "friday plus one lands monday",
			paidAt: date(2026, time.March, 6),
			days:   1,
			want:   date(2026, time.March, 9),
		},
		{
			name:   "saturday payment counts from monday",
			paidAt: date(2026, time.March, 7),
			days:   3,
			want:   date(2026, time.March, 11),
		},
		{
			name:   "sunday payment counts from monday",
			paidAt: date(2026, time.March, 8),
			days:   3,
			want:   date(2026, time.March, 11),
		},
		{
			name:   "zero days is the paid timestamp",
			paidAt: date(2026, time.March, 6),
			days:   0,
			want:   date(2026, time.March, 6),
		},
		{
			name:   "two full weeks of business days",
			paidAt: date(2026, time.March, 2),
			days:   10,
			want:   date(2026, time.March, 16),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShippingDeadline(tc.paidAt, tc.days)
			if !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			if wd := got.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Fatalf("deadline must never land on a weekend, got %s", wd)
			}
		})
	}
}

func TestShippingDeadlinePreservesTimeOfDay(t *testing.T) {
	paidAt := time.Date(2026, time.March, 2, 9, 15, 42, 0, time.UTC)
	got := ShippingDeadline(paidAt, 3)
	if got.Hour() != 9 || got.Minute() != 15 || got.Second() != 42 {
		t.Fatalf("time of day must carry over, got %s", got)
	}
}
