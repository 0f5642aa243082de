package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/qainatsaeed/BlackBox-LLM/internal/dto"
)

// End-to-end smoke test against a running middleware instance: pushes one
// envelope per role onto the ask queue and waits for the correlated
// responses.
func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	askQueue := envOr("ASK_QUEUE_NAME", "hrask.ask.queue")
	responseQueue := envOr("RESPONSE_QUEUE_NAME", "hrask.response.queue")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		color.Red("Failed to parse REDIS_URL: %v", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opt)
	ctx := context.Background()

	color.Cyan("🚀 Queue smoke test (ask=%s response=%s)\n", askQueue, responseQueue)

	requests := []dto.AskRequest{
		{
			RequestID: uuid.NewString(),
			Query:     "Who is working today?",
			UserID:    "emp001",
			Role:      "manager",
			AccountID: "acct_demo",
		},
		{
			RequestID: uuid.NewString(),
			Query:     "What is the vacation policy?",
			UserID:    "emp004",
			Role:      "employee",
			AccountID: "acct_demo",
		},
		{
			RequestID: uuid.NewString(),
			Query:     "Total sales last week",
			UserID:    "emp002",
			Role:      "supervisor",
			AccountID: "acct_demo",
		},
	}

	pending := map[string]string{}
	for _, req := range requests {
		payload, _ := json.Marshal(req)
		if err := rdb.RPush(ctx, askQueue, payload).Err(); err != nil {
			color.Red("Failed to enqueue %s: %v", req.RequestID, err)
			os.Exit(1)
		}
		pending[req.RequestID] = req.Query
		color.Yellow("→ [%s] %s (%s)", req.Role, req.Query, req.RequestID)
	}

	deadline := time.Now().Add(2 * time.Minute)
	for len(pending) > 0 && time.Now().Before(deadline) {
		result, err := rdb.BLPop(ctx, 5*time.Second, responseQueue).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			color.Red("BLPOP failed: %v", err)
			os.Exit(1)
		}

		var resp dto.AskResponse
		if err := json.Unmarshal([]byte(result[1]), &resp); err != nil {
			color.Red("Malformed response payload: %v", err)
			continue
		}

		query, known := pending[resp.RequestID]
		if !known {
			color.Red("Uncorrelated response: %s", resp.RequestID)
			continue
		}
		delete(pending, resp.RequestID)

		if resp.Status == dto.StatusOK {
			color.Green("← [%s] %s (%s, %dms)", resp.RequestID, query, resp.ModelUsed, resp.ElapsedMs)
			fmt.Printf("   %s\n", resp.Answer)
		} else {
			color.Red("← [%s] %s failed: %s (%s)", resp.RequestID, query, resp.Error.Code, resp.Error.Message)
		}
		if resp.Debug != nil {
			fmt.Printf("   debug: classification=%s retrieved=%d kept=%d\n",
				resp.Debug.Classification, resp.Debug.DocumentsRetrieved, resp.Debug.DocumentsAfterFilter)
		}
	}

	if len(pending) > 0 {
		color.Red("❌ %d request(s) never answered", len(pending))
		os.Exit(1)
	}
	color.Green("✅ All requests answered")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
