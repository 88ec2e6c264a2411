// Package main implements a standalone seed script that submits a set of
// sample reviews to a running feedback service, then prints the resulting
// analytics snapshot.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/utafrali/FeedbackAI/pkg/httpclient"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

func postJSON(ctx context.Context, c *httpclient.Client, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	resp, err := c.Post(ctx, url, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 400 {
		return httpclient.ParseResponseError(resp, "feedback")
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func getJSON(ctx context.Context, c *httpclient.Client, url string, out any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode >= 400 {
		return httpclient.ParseResponseError(resp, "feedback")
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Seed data definitions
// --------------------------------------------------------------------------

type reviewDef struct {
	rating int
	review string
}

var reviews = []reviewDef{
	{5, "Absolutely loved the food! The pasta was perfectly cooked and the staff were so friendly. Will definitely come back."},
	{5, "Best brunch spot in town. Fantastic coffee and the pancakes are outstanding."},
	{4, "Great atmosphere and tasty dishes. Service was a little slow during peak hours but overall a good experience."},
	{4, "Good value for money. The burger was juicy, fries could have been crispier."},
	{3, "Food was okay, nothing special. Prices are fair but the menu is limited."},
	{3, "Decent place for a quick lunch. Portions were smaller than expected."},
	{2, "Waited 40 minutes for our mains and the soup arrived cold. Disappointing."},
	{2, "Overpriced for what you get. The dessert was the only highlight."},
	{1, "Terrible experience. Rude staff, dirty tables, and my order was wrong twice."},
	{1, "Worst meal I've had in years. Never coming back."},
}

// --------------------------------------------------------------------------
// main
// --------------------------------------------------------------------------

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	baseURL := getEnv("FEEDBACK_URL", "http://localhost:8000")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 90 * time.Second
	client := httpclient.New(cfg)

	// ---------------------------------------------------------------
	// 1. Check the service is up
	// ---------------------------------------------------------------
	var health map[string]any
	if err := getJSON(ctx, client, baseURL+"/health", &health); err != nil {
		log.Fatalf("feedback service not reachable at %s: %v", baseURL, err)
	}
	log.Printf("Feedback service is %v.", health["status"])

	// ---------------------------------------------------------------
	// 2. Submit reviews
	// ---------------------------------------------------------------
	log.Printf("Submitting %d reviews...", len(reviews))
	submitted := 0
	for _, r := range reviews {
		var sub struct {
			Timestamp  string `json:"timestamp"`
			AIResponse string `json:"ai_response"`
		}
		err := postJSON(ctx, client, baseURL+"/api/reviews/submit", map[string]any{
			"rating": r.rating,
			"review": r.review,
		}, &sub)
		if err != nil {
			log.Printf("  WARNING: %d-star review: %v", r.rating, err)
			continue
		}
		submitted++
		log.Printf("  %d-star review stored at %s", r.rating, sub.Timestamp)
	}

	// ---------------------------------------------------------------
	// 3. Print analytics
	// ---------------------------------------------------------------
	var analytics struct {
		TotalReviews       int            `json:"total_reviews"`
		AverageRating      float64        `json:"average_rating"`
		RatingDistribution map[string]int `json:"rating_distribution"`
	}
	if err := getJSON(ctx, client, baseURL+"/api/reviews/analytics", &analytics); err != nil {
		log.Fatalf("fetch analytics: %v", err)
	}

	log.Println("==========================================================")
	log.Printf("Seed complete: %d/%d reviews submitted.", submitted, len(reviews))
	log.Printf("  Total reviews:  %d", analytics.TotalReviews)
	log.Printf("  Average rating: %.2f", analytics.AverageRating)
	for star := 5; star >= 1; star-- {
		log.Printf("  %d stars: %d", star, analytics.RatingDistribution[fmt.Sprint(star)])
	}
	log.Println("==========================================================")

	if submitted == 0 {
		os.Exit(1)
	}
}
