package webhook

import (
	"encoding/json"
	"strings"
	"time"

	"hookboard/internal/storage"
)

const unknown = "Unknown"

// Normalizer maps raw GitHub webhook payloads to storage events
type Normalizer struct {
	// Now returns the receipt time. Defaults to time.Now in UTC.
	Now func() time.Time
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now().UTC()
	}
	return n.Now().UTC()
}

// Normalize classifies body according to the X-GitHub-Event value and
// extracts the fields the dashboard shows. The body is kept verbatim as the
// event's raw payload.
func (n *Normalizer) Normalize(body []byte, eventType string) (*storage.Event, error) {
	p, err := ParsePayload(body)
	if err != nil {
		return nil, err
	}

	event := &storage.Event{
		Timestamp:  n.now(),
		Repository: p.String(pathRepository, unknown),
		EventType:  eventType,
		RawPayload: json.RawMessage(body),
	}

	switch {
	case eventType == "push":
		event.Action = storage.ActionPush
		event.Author = p.String(pathPusherName, unknown)
		event.ToBranch = storage.StringPtr(strings.TrimPrefix(p.String(pathRef, ""), "refs/heads/"))

	case eventType == "pull_request" && !isMerge(p):
		event.Action = storage.ActionPullRequest
		event.Author = p.String(pathPRUser, unknown)
		setPullRequestBranches(event, p)

	case eventType == "pull_request":
		event.Action = storage.ActionMerge
		event.Author = p.String(pathPRMergedByUser, unknown)
		setPullRequestBranches(event, p)

	default:
		event.Action = storage.Action(strings.ToUpper(eventType))
		event.Author = unknown
	}

	return event, nil
}

// isMerge reports whether a pull_request payload describes a merged PR
func isMerge(p Payload) bool {
	return p.String(pathAction, "") == "closed" && p.IsTrue(pathPRMerged)
}

func setPullRequestBranches(event *storage.Event, p Payload) {
	event.FromBranch = storage.StringPtr(p.String(pathPRHeadRef, unknown))
	event.ToBranch = storage.StringPtr(p.String(pathPRBaseRef, unknown))
}
