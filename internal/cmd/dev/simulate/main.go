package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

var repository = map[string]interface{}{
	"name":      "test-repo",
	"full_name": "user/test-repo",
	"private":   false,
}

var sampleEvents = []struct {
	Type    string
	Payload interface{}
}{
	{
		Type: "push",
		Payload: map[string]interface{}{
			"ref":        "refs/heads/main",
			"repository": repository,
			"pusher": map[string]interface{}{
				"name":  "test-user",
				"email": "test-user@example.com",
			},
			"commits": []map[string]interface{}{
				{
					"id":        "abc123",
					"message":   "Test commit",
					"timestamp": time.Now().Format(time.RFC3339),
				},
			},
		},
	},
	{
		Type: "pull_request",
		Payload: map[string]interface{}{
			"action":     "opened",
			"number":     1,
			"repository": repository,
			"pull_request": map[string]interface{}{
				"title":  "Test PR",
				"merged": false,
				"user":   map[string]interface{}{"login": "test-user"},
				"head":   map[string]interface{}{"ref": "feature-branch", "sha": "def456"},
				"base":   map[string]interface{}{"ref": "main"},
			},
		},
	},
	{
		Type: "pull_request",
		Payload: map[string]interface{}{
			"action":     "closed",
			"number":     1,
			"repository": repository,
			"pull_request": map[string]interface{}{
				"title":     "Test PR",
				"merged":    true,
				"user":      map[string]interface{}{"login": "test-user"},
				"merged_by": map[string]interface{}{"login": "maintainer"},
				"head":      map[string]interface{}{"ref": "feature-branch", "sha": "def456"},
				"base":      map[string]interface{}{"ref": "main"},
			},
		},
	},
	{
		Type: "issues",
		Payload: map[string]interface{}{
			"action":     "opened",
			"repository": repository,
			"sender": map[string]interface{}{
				"login": "test-user",
				"type":  "User",
			},
			"issue": map[string]interface{}{
				"number": 123,
				"title":  "Test Issue",
				"state":  "open",
			},
		},
	},
}

func main() {
	var (
		targetURL = flag.String("url", "http://localhost:8080/webhook/receiver", "Target URL for webhooks")
		delay     = flag.Duration("delay", 2*time.Second, "Delay between webhooks")
	)
	flag.Parse()

	log.Printf("Starting webhook simulation")
	log.Printf("Target URL: %s", *targetURL)

	client := &http.Client{Timeout: 10 * time.Second}

	for i, event := range sampleEvents {
		log.Printf("Sending %s event...", event.Type)

		payload, err := json.Marshal(event.Payload)
		if err != nil {
			log.Fatalf("Error marshaling payload: %v", err)
		}

		req, err := http.NewRequest(http.MethodPost, *targetURL, bytes.NewReader(payload))
		if err != nil {
			log.Fatalf("Error creating request: %v", err)
		}

		// Add headers
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-GitHub-Event", event.Type)
		req.Header.Set("X-GitHub-Delivery", fmt.Sprintf("test-%d", time.Now().UnixNano()))

		start := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			log.Printf("Error sending webhook: %v", err)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		log.Printf("Response: HTTP %d (%v) %s", resp.StatusCode, time.Since(start), bytes.TrimSpace(body))

		if i < len(sampleEvents)-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("Simulation complete")
}
