package service

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	earlierToday := now.Add(-4 * time.Hour)
	lastWeek := now.AddDate(0, 0, -7)

	cases := []struct {
		name        string
		lastStudied *time.Time
		streak      int
		want        int
	}{
		{"first ever session", nil, 0, 1},
		{"continued from yesterday", &yesterday, 3, 4},
		{"second session today", &earlierToday, 3, 3},
		{"second session today with zero streak", &earlierToday, 0, 1},
		{"broken streak restarts", &lastWeek, 9, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextStreak(tc.lastStudied, tc.streak, now); got != tc.want {
				t.Errorf("nextStreak = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestNextStreakCrossesMidnightBoundary(t *testing.T) {
	// 23:50 yesterday and 00:10 today are different study days.
	lateYesterday := time.Date(2025, 6, 9, 23, 50, 0, 0, time.UTC)
	justAfterMidnight := time.Date(2025, 6, 10, 0, 10, 0, 0, time.UTC)
	if got := nextStreak(&lateYesterday, 2, justAfterMidnight); got != 3 {
		t.Errorf("nextStreak across midnight = %d, want 3", got)
	}
}
