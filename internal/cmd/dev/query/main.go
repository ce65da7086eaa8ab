package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"hookboard/internal/message"
	"hookboard/internal/stats"
	"hookboard/internal/storage"
	"hookboard/internal/storage/factory"
)

func main() {
	var (
		limit     = flag.Int("limit", 10, "Maximum number of events to show")
		since     = flag.Duration("since", 24*time.Hour, "Show events since duration (e.g. 1h, 24h)")
		showStats = flag.Bool("stats", false, "Show dashboard statistics instead of events")
		dbURI     = flag.String("db", "sqlite:hookboard.db", "Storage URI (sqlite:, postgres://, mysql://, redis://)")
	)
	flag.Parse()

	ctx := context.Background()

	store, err := factory.NewStorageFromURI(ctx, *dbURI)
	if err != nil {
		log.Fatalf("Failed to connect to storage: %v", err)
	}
	defer store.Close()

	if *showStats {
		st, err := stats.Compute(ctx, store, time.Now().UTC())
		if err != nil {
			log.Fatalf("Failed to compute stats: %v", err)
		}

		fmt.Printf("\nTotal: %d, today: %d\n", st.Total, st.Today)
		actions := make([]string, 0, len(st.ByAction))
		for action := range st.ByAction {
			actions = append(actions, action)
		}
		sort.Strings(actions)
		for _, action := range actions {
			fmt.Printf("  %s: %d\n", action, st.ByAction[action])
		}
		return
	}

	sinceTime := time.Now().UTC().Add(-*since)
	opts := storage.QueryOptions{
		Limit: *limit,
		Since: sinceTime,
	}

	events, err := store.ListEvents(ctx, opts)
	if err != nil {
		log.Fatalf("Failed to query events: %v", err)
	}
	total, err := store.CountEvents(ctx, storage.QueryOptions{Since: sinceTime})
	if err != nil {
		log.Fatalf("Failed to count events: %v", err)
	}

	// Print results
	fmt.Printf("\nShowing %d of %d events since %s:\n", len(events), total, sinceTime.Format(time.RFC3339))
	fmt.Println("----------------------------------------")
	for _, event := range events {
		fmt.Printf("ID:        %s\n", event.ID)
		fmt.Printf("Action:    %s\n", event.Action)
		fmt.Printf("Repo:      %s\n", event.Repository)
		fmt.Printf("Message:   %s\n", message.Format(event))
		fmt.Println("----------------------------------------")
	}
}
