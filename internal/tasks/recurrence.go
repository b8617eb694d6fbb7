package tasks

import (
	"time"

	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// NextRecurrence computes the next occurrence of a recurring template per
// the stated pattern: daily advances by interval days, weekly by interval weeks,
// monthly by interval months with end-of-month clamping (the day-of-month
// of from is preserved unless the target month is shorter, in which case
// the result clamps to that month's last day — e.g. Jan 31 + 1 month lands
// on Feb 28 or Feb 29).
func NextRecurrence(pattern models.RecurrencePattern, interval int, from time.Time) time.Time {
	if interval < 1 {
		interval = 1
	}

	switch pattern {
	case models.RecurrenceDaily:
		return from.AddDate(0, 0, interval)
	case models.RecurrenceWeekly:
		return from.AddDate(0, 0, 7*interval)
	case models.RecurrenceMonthly, models.RecurrenceCustom:
		return addMonthsClamped(from, interval)
	default:
		return from
	}
}

// addMonthsClamped adds months calendar-months to t, clamping the result's
// day-of-month to the last valid day of the target month when t.Day()
// overflows it (time.Time's own AddDate would otherwise roll over into the
// following month, e.g. Jan 31 + 1 month -> Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	targetMonthIndex := int(month) - 1 + months
	targetYear := year + targetMonthIndex/12
	targetMonth := time.Month(targetMonthIndex%12 + 1)
	if targetMonth <= 0 {
		targetMonth += 12
		targetYear--
	}

	lastDay := lastDayOfMonth(targetYear, targetMonth)
	if day > lastDay {
		day = lastDay
	}

	return time.Date(targetYear, targetMonth, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastOfThis := firstOfNext.AddDate(0, 0, -1)
	return lastOfThis.Day()
}
