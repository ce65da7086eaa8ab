package message

import "hookboard/internal/storage"

// Entry is the dashboard view of a stored event
type Entry struct {
	ID         string  `json:"id"`
	Action     string  `json:"action"`
	Message    string  `json:"message"`
	Author     string  `json:"author"`
	FromBranch *string `json:"from_branch"`
	ToBranch   *string `json:"to_branch"`
	Timestamp  string  `json:"timestamp"`
	Repository string  `json:"repository"`
	EventType  string  `json:"event_type"`
}

func NewEntry(e *storage.Event) Entry {
	return Entry{
		ID:         e.ID,
		Action:     e.Action.String(),
		Message:    Format(e),
		Author:     e.Author,
		FromBranch: e.FromBranch,
		ToBranch:   e.ToBranch,
		Timestamp:  FormatTimestamp(e.Timestamp),
		Repository: e.Repository,
		EventType:  e.EventType,
	}
}

// NewEntries maps events to entries, preserving order.
func NewEntries(events []*storage.Event) []Entry {
	entries := make([]Entry, 0, len(events))
	for _, e := range events {
		entries = append(entries, NewEntry(e))
	}
	return entries
}
