package model

import (
	"testing"
	"time"
)

func window(startHour, endHour int) Session {
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	return Session{
		StartsAt: day.Add(time.Duration(startHour) * time.Hour),
		EndsAt:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestStatusAt(t *testing.T) {
	sess := window(8, 10)

	tests := []struct {
		name string
		at   time.Time
		want SessionStatus
	}{
		{name: "before start", at: sess.StartsAt.Add(-time.Minute), want: SessionStatusScheduled},
		{name: "exactly at start", at: sess.StartsAt, want: SessionStatusOpen},
		{name: "mid window", at: sess.StartsAt.Add(time.Hour), want: SessionStatusOpen},
		{name: "exactly at end", at: sess.EndsAt, want: SessionStatusOpen},
		{name: "after end", at: sess.EndsAt.Add(time.Second), want: SessionStatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sess.StatusAt(tt.at); got != tt.want {
				t.Errorf("StatusAt(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

// Status never moves backwards as time advances.
func TestStatusAtMonotonic(t *testing.T) {
	sess := window(8, 10)
	rank := map[SessionStatus]int{
		SessionStatusScheduled: 0,
		SessionStatusOpen:      1,
		SessionStatusClosed:    2,
	}

	prev := -1
	for at := sess.StartsAt.Add(-time.Hour); at.Before(sess.EndsAt.Add(time.Hour)); at = at.Add(time.Minute) {
		cur := rank[sess.StatusAt(at)]
		if cur < prev {
			t.Fatalf("status regressed at %v", at)
		}
		prev = cur
	}
}

func TestOverlapsRange(t *testing.T) {
	sess := window(8, 10)
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start int // minutes from midnight
		end   int
		want  bool
	}{
		{name: "identical window", start: 8 * 60, end: 10 * 60, want: true},
		{name: "contained", start: 8*60 + 30, end: 9 * 60, want: true},
		{name: "straddles start", start: 7 * 60, end: 9 * 60, want: true},
		{name: "straddles end", start: 9*60 + 30, end: 11 * 60, want: true},
		{name: "touching before", start: 6 * 60, end: 8 * 60, want: false},
		{name: "touching after", start: 10 * 60, end: 12 * 60, want: false},
		{name: "fully before", start: 5 * 60, end: 7 * 60, want: false},
		{name: "fully after", start: 11 * 60, end: 13 * 60, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := day.Add(time.Duration(tt.start) * time.Minute)
			end := day.Add(time.Duration(tt.end) * time.Minute)
			if got := sess.OverlapsRange(start, end); got != tt.want {
				t.Errorf("OverlapsRange(%v, %v) = %v, want %v", start, end, got, tt.want)
			}
		})
	}
}
