package graphql

import (
	"fmt"
	"sort"
	"time"

	"hookboard/internal/message"
	"hookboard/internal/stats"
	"hookboard/internal/storage"

	"github.com/graphql-go/graphql"
)

const defaultLimit = 50

// webhookSource flattens an event into the map the default field resolver
// reads from.
func webhookSource(e *storage.Event) map[string]interface{} {
	src := map[string]interface{}{
		"id":                 e.ID,
		"action":             e.Action.String(),
		"author":             e.Author,
		"timestamp":          e.Timestamp,
		"formattedTimestamp": message.FormatTimestamp(e.Timestamp),
		"repository":         e.Repository,
		"eventType":          e.EventType,
		"message":            message.Format(e),
		"payload":            string(e.RawPayload),
	}
	if e.FromBranch != nil {
		src["fromBranch"] = *e.FromBranch
	}
	if e.ToBranch != nil {
		src["toBranch"] = *e.ToBranch
	}
	return src
}

// resolveWebhooks handles the webhooks query
func (s *Schema) resolveWebhooks(p graphql.ResolveParams) (interface{}, error) {
	opts := storage.QueryOptions{
		Limit:  defaultLimit,
		Offset: 0,
	}

	if limit, ok := p.Args["limit"].(int); ok {
		if limit < 0 {
			return nil, fmt.Errorf("limit must not be negative")
		}
		if limit > 0 {
			opts.Limit = limit
		}
	}

	if offset, ok := p.Args["offset"].(int); ok {
		if offset < 0 {
			return nil, fmt.Errorf("offset must not be negative")
		}
		opts.Offset = offset
	}

	if since, ok := p.Args["since"].(time.Time); ok {
		opts.Since = since
	}

	events, err := s.store.ListEvents(p.Context, opts)
	if err != nil {
		s.logger.Error("Error listing webhooks", "error", err)
		return nil, fmt.Errorf("failed to fetch webhooks")
	}

	webhooks := make([]map[string]interface{}, 0, len(events))
	for _, e := range events {
		webhooks = append(webhooks, webhookSource(e))
	}

	return map[string]interface{}{
		"webhooks": webhooks,
		"count":    len(webhooks),
	}, nil
}

// resolveWebhook handles the webhook query
func (s *Schema) resolveWebhook(p graphql.ResolveParams) (interface{}, error) {
	id, ok := p.Args["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("invalid webhook ID")
	}

	event, err := s.store.GetEvent(p.Context, id)
	if storage.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Error getting webhook", "id", id, "error", err)
		return nil, fmt.Errorf("failed to fetch webhook")
	}

	return webhookSource(event), nil
}

// resolveStats handles the stats query
func (s *Schema) resolveStats(p graphql.ResolveParams) (interface{}, error) {
	st, err := stats.Compute(p.Context, s.store, s.now())
	if err != nil {
		s.logger.Error("Error getting stats", "error", err)
		return nil, fmt.Errorf("failed to fetch statistics")
	}

	actions := make([]string, 0, len(st.ByAction))
	for action := range st.ByAction {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	counts := make([]map[string]interface{}, 0, len(actions))
	for _, action := range actions {
		counts = append(counts, map[string]interface{}{
			"action": action,
			"count":  st.ByAction[action],
		})
	}

	return map[string]interface{}{
		"total":        st.Total,
		"today":        st.Today,
		"actionCounts": counts,
	}, nil
}
