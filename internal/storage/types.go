package storage

import (
	"context"
	"encoding/json"
	"time"
)

// Action classifies a normalized webhook event.
type Action string

const (
	ActionPush        Action = "PUSH"
	ActionPullRequest Action = "PULL_REQUEST"
	ActionMerge       Action = "MERGE"
)

// IsKnown reports whether a is one of the classified actions. Any other
// label is the uppercased event type of an unclassified event.
func (a Action) IsKnown() bool {
	switch a {
	case ActionPush, ActionPullRequest, ActionMerge:
		return true
	}
	return false
}

func (a Action) String() string {
	return string(a)
}

// Event represents a normalized GitHub webhook event
type Event struct {
	ID         string          `json:"id"`
	Action     Action          `json:"action"`
	Author     string          `json:"author"`
	FromBranch *string         `json:"from_branch"`
	ToBranch   *string         `json:"to_branch"`
	Timestamp  time.Time       `json:"timestamp"`  // Receipt time, always UTC
	Repository string          `json:"repository"`
	EventType  string          `json:"event_type"` // Raw X-GitHub-Event value
	RawPayload json.RawMessage `json:"raw_payload"`
}

// QueryOptions contains options for querying events
type QueryOptions struct {
	Since  time.Time // Only events received at or after this instant
	Limit  int       // Maximum number of events to return, <= 0 means no limit
	Offset int       // Offset for pagination
}

// Storage defines the interface for event storage
type Storage interface {
	StoreEvent(ctx context.Context, event *Event) (string, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, opts QueryOptions) ([]*Event, error)
	CountEvents(ctx context.Context, opts QueryOptions) (int, error)
	GetStats(ctx context.Context, since time.Time) (map[string]int64, error)
	Ping(ctx context.Context) error
	CreateSchema(ctx context.Context) error
	Close() error
}

// StringPtr returns a pointer to s, for the optional branch fields.
func StringPtr(s string) *string {
	return &s
}
