// Package message renders stored webhook events as the one-line sentences the
// dashboard shows.
package message

import (
	"fmt"
	"strconv"
	"time"

	"hookboard/internal/storage"
)

const timeLayout = "January 2006 - 03:04 PM"

// OrdinalSuffix returns the English ordinal suffix for a day of the month.
func OrdinalSuffix(day int) string {
	switch day {
	case 1, 21, 31:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	default:
		return "th"
	}
}

// FormatTimestamp renders t in UTC as e.g. "1st March 2024 - 02:30 PM UTC".
func FormatTimestamp(t time.Time) string {
	u := t.UTC()
	return strconv.Itoa(u.Day()) + OrdinalSuffix(u.Day()) + " " + u.Format(timeLayout) + " UTC"
}

// Format returns the dashboard sentence for e.
func Format(e *storage.Event) string {
	ts := FormatTimestamp(e.Timestamp)
	from, to := deref(e.FromBranch), deref(e.ToBranch)

	switch e.Action {
	case storage.ActionPush:
		return fmt.Sprintf("%s pushed to %s on %s", e.Author, to, ts)
	case storage.ActionPullRequest:
		return fmt.Sprintf("%s submitted a pull request from %s to %s on %s", e.Author, from, to, ts)
	case storage.ActionMerge:
		return fmt.Sprintf("%s merged branch %s to %s on %s", e.Author, from, to, ts)
	default:
		return fmt.Sprintf("%s performed %s on %s", e.Author, e.Action, ts)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
