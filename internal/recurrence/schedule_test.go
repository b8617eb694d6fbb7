package recurrence

import (
	"testing"
	"time"
)

func TestNewSchedule_RejectsEmptyAndInvalidExpressions(t *testing.T) {
	if _, err := NewSchedule(""); err == nil {
		t.Error("expected an error for an empty expression")
	}
	if _, err := NewSchedule("not a cron expression"); err == nil {
		t.Error("expected an error for a malformed expression")
	}
}

func TestSchedule_NextAdvancesToTheNextMatchingMinute(t *testing.T) {
	sched, err := NewSchedule("30 3 * * *")
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}

	now := time.Date(2026, 7, 29, 3, 0, 0, 0, time.UTC)
	next := sched.Next(now)

	want := time.Date(2026, 7, 29, 3, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", now, next, want)
	}
}

func TestSchedule_NextRollsOverToTheFollowingDay(t *testing.T) {
	sched, err := NewSchedule("0 0 * * *")
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}

	now := time.Date(2026, 7, 29, 23, 59, 0, 0, time.UTC)
	next := sched.Next(now)

	want := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", now, next, want)
	}
}
