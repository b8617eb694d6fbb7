package tasks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// hashtagPattern matches a leading-# token made of letters, digits,
// underscores, or hyphens.
var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)

// recurrenceKeywordPattern matches a trailing recurrence keyword, optionally
// preceded by "every".
var recurrenceKeywordPattern = regexp.MustCompile(`(?i)\b(?:every\s+)?(daily|weekly|monthly)\b`)

// ExtractHashtags returns the normalised (lower-cased) tag names found in
// text and the text with the matched #tag tokens stripped, so hashtags in
// titles/descriptions become tag links and the raw #tag tokens never show
// up in the stored title.
func ExtractHashtags(text string) (tags []string, cleaned string) {
	matches := hashtagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, text
	}

	var b strings.Builder
	last := 0
	seen := make(map[string]bool)
	for _, m := range matches {
		start, end := m[0], m[1]
		name := NormaliseTagName(text[m[2]:m[3]])
		if name != "" && !seen[name] {
			seen[name] = true
			tags = append(tags, name)
		}
		b.WriteString(text[last:start])
		last = end
	}
	b.WriteString(text[last:])

	return tags, collapseSpaces(b.String())
}

// NormaliseTagName lower-cases name and strips a leading '#', per the data
// model's tag normal form (invariant 5).
func NormaliseTagName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "#")
	return strings.ToLower(name)
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// ExtractRecurrenceKeyword scans text for a trailing "daily"/"weekly"/
// "monthly" keyword (optionally preceded by "every") and returns the
// matching RecurrencePattern plus the text with the keyword removed. It
// returns RecurrenceNone and the original text when no keyword is found.
func ExtractRecurrenceKeyword(text string) (models.RecurrencePattern, string) {
	loc := recurrenceKeywordPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.RecurrenceNone, text
	}

	keyword := strings.ToLower(text[loc[2]:loc[3]])
	var pattern models.RecurrencePattern
	switch keyword {
	case "daily":
		pattern = models.RecurrenceDaily
	case "weekly":
		pattern = models.RecurrenceWeekly
	case "monthly":
		pattern = models.RecurrenceMonthly
	default:
		return models.RecurrenceNone, text
	}

	cleaned := collapseSpaces(text[:loc[0]] + text[loc[1]:])
	return pattern, cleaned
}

// relativeDuePattern matches phrases like "in 3 days" or "in 2 weeks".
var relativeDuePattern = regexp.MustCompile(`(?i)^in\s+(\d+(?:\.\d+)?)\s*(hours?|hrs?|days?|weeks?)$`)

// ParseDueDate resolves a due_date argument that may already be a
// conventionally-formatted timestamp or a short relative phrase ("in 3
// days"). Relative phrases are resolved against now; everything else is
// handed to dateparse, which tolerates the wide variety of absolute date
// formats a model is likely to emit without needing an explicit layout.
func ParseDueDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if m := relativeDuePattern.FindStringSubmatch(raw); m != nil {
		return parseRelativeDue(m, now)
	}

	return dateparse.ParseIn(raw, now.Location())
}

func parseRelativeDue(m []string, now time.Time) (time.Time, error) {
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return time.Time{}, err
	}

	unit := strings.ToLower(m[2])
	var perUnit time.Duration
	switch {
	case strings.HasPrefix(unit, "hour"), strings.HasPrefix(unit, "hr"):
		perUnit = time.Hour
	case strings.HasPrefix(unit, "day"):
		perUnit = 24 * time.Hour
	case strings.HasPrefix(unit, "week"):
		perUnit = 7 * 24 * time.Hour
	default:
		return time.Time{}, fmt.Errorf("unrecognised due date unit: %s", unit)
	}

	return now.Add(time.Duration(amount * float64(perUnit))), nil
}
