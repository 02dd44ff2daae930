package twitter

import (
	"context"
	"strconv"

	"socialmetrics/internal/fetcher"
	"socialmetrics/internal/ratelimit"
)

// Tweet is a raw tweet as delivered by the scraper.
type Tweet struct {
	User     map[string]any   `json:"user"`
	Link     string           `json:"link"`
	Text     string           `json:"text"`
	Pictures []string         `json:"pictures"`
	Videos   []string         `json:"videos"`
	Stats    map[string]int64 `json:"stats"`
	Date     string           `json:"date"`
}

// Scraper is the external scraping capability. It is an opaque
// collaborator: any error it returns is treated as an empty result.
type Scraper interface {
	// Tweets returns up to limit recent tweets for username.
	Tweets(ctx context.Context, username string, limit int) ([]Tweet, error)

	// Profile returns the profile info for username. The shape is
	// provider-defined apart from the "joined" and "stats" fields.
	Profile(ctx context.Context, username string) (map[string]any, error)
}

// HTTPScraper talks to a ntscraper-compatible sidecar over HTTP. Failed
// requests degrade to empty results through the fetcher, so this
// implementation never returns an error.
type HTTPScraper struct {
	client *fetcher.Client
}

// NewHTTPScraper creates a scraper client bound to the sidecar's base URL.
func NewHTTPScraper(baseURL string) *HTTPScraper {
	return &HTTPScraper{
		client: fetcher.NewClient(baseURL),
	}
}

type tweetsResponse struct {
	Tweets []Tweet `json:"tweets"`
}

// Tweets implements Scraper.
func (s *HTTPScraper) Tweets(ctx context.Context, username string, limit int) ([]Tweet, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIScraper); err != nil {
		return nil, err
	}

	var result tweetsResponse
	if !s.client.GetJSON(ctx, "/tweets", map[string]string{
		"username": username,
		"limit":    strconv.Itoa(limit),
		"mode":     "user",
	}, nil, &result) {
		return nil, nil
	}
	return result.Tweets, nil
}

// Profile implements Scraper.
func (s *HTTPScraper) Profile(ctx context.Context, username string) (map[string]any, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIScraper); err != nil {
		return nil, err
	}

	var result map[string]any
	if !s.client.GetJSON(ctx, "/profile", map[string]string{
		"username": username,
	}, nil, &result) {
		return nil, nil
	}
	return result, nil
}
