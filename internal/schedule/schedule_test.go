package schedule

import (
	"testing"
	"time"

	"github.com/pathakanu/myPlants/internal/model"
)

func ptr(t time.Time) *time.Time { return &t }

func TestNextWateringAddsExactDays(t *testing.T) {
	t.Parallel()

	refs := []time.Time{
		time.Date(2026, 1, 31, 9, 30, 0, 0, time.UTC),
		time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 30, 18, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 28, 12, 0, 0, 0, time.FixedZone("CET", 3600)),
	}
	for _, ref := range refs {
		for _, f := range []int{1, 2, 3, 7, 14, 30, 365} {
			got := NextWatering(ref, f)
			if diff := got.Sub(ref); diff != time.Duration(f)*Day {
				t.Fatalf("NextWatering(%s, %d) - ref = %s, want %d days", ref, f, diff, f)
			}
		}
	}

	got := NextWatering(time.Date(2026, 12, 28, 8, 0, 0, 0, time.UTC), 7)
	if want := time.Date(2027, 1, 4, 8, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("year rollover: got %s want %s", got, want)
	}
}

func TestUnscheduledPlantIsNeverOverdue(t *testing.T) {
	t.Parallel()

	p := &model.Plant{WaterFrequency: 3}
	for _, now := range []time.Time{
		{},
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		if IsOverdue(p, now) {
			t.Fatalf("IsOverdue with nil next_watering at %s = true", now)
		}
	}
	if _, ok := DaysUntil(p, time.Now()); ok {
		t.Fatalf("DaysUntil on unscheduled plant reported ok")
	}
	if got := StatusOf(p, time.Now()); got != StatusUnscheduled {
		t.Fatalf("StatusOf = %s, want %s", got, StatusUnscheduled)
	}
}

func TestIsOverdueBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		next time.Time
		want bool
	}{
		{now, true},
		{now.Add(-time.Nanosecond), true},
		{now.Add(time.Nanosecond), false},
		{now.Add(-72 * time.Hour), true},
	}
	for _, tc := range cases {
		p := &model.Plant{NextWatering: ptr(tc.next)}
		if got := IsOverdue(p, now); got != tc.want {
			t.Fatalf("IsOverdue(next=%s) = %v, want %v", tc.next, got, tc.want)
		}
	}
}

func TestNeverWateredPlantScenario(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	p := &model.Plant{
		WaterFrequency: 7,
		CreatedAt:      created,
		NextWatering:   ptr(NextWatering(created, 7)),
	}
	now := created.Add(10 * Day)

	if !IsOverdue(p, now) {
		t.Fatalf("expected plant to be overdue")
	}
	days, ok := DaysUntil(p, now)
	if !ok || days != -3 {
		t.Fatalf("DaysUntil = %d (ok=%v), want -3", days, ok)
	}
	if got := StatusOf(p, now); got != StatusOverdue {
		t.Fatalf("StatusOf = %s, want %s", got, StatusOverdue)
	}
}

func TestDaysUntilRoundsUp(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	cases := map[time.Duration]int{
		time.Hour:            1,
		Day:                  1,
		Day + time.Minute:    2,
		3 * Day:              3,
		-time.Hour:           0,
		-Day:                 -1,
		-Day - time.Hour:     -1,
		-2*Day - time.Second: -2,
	}
	for offset, want := range cases {
		p := &model.Plant{NextWatering: ptr(now.Add(offset))}
		got, ok := DaysUntil(p, now)
		if !ok || got != want {
			t.Fatalf("DaysUntil(now%+v) = %d, want %d", offset, got, want)
		}
	}
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		next time.Time
		want Status
	}{
		{now.Add(-time.Minute), StatusOverdue},
		{now.Add(6 * time.Hour), StatusDueToday},
		{now.Add(20 * time.Hour), StatusUpcoming},
		{now.Add(5 * Day), StatusUpcoming},
	}
	for _, tc := range cases {
		p := &model.Plant{NextWatering: ptr(tc.next)}
		if got := StatusOf(p, now); got != tc.want {
			t.Fatalf("StatusOf(next=%s) = %s, want %s", tc.next, got, tc.want)
		}
	}
}
