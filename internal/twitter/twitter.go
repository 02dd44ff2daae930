// Package twitter adapts a Twitter-like profile to the canonical
// profile/items/stats shape, caching fetches through the record store.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"socialmetrics/internal/cache"
	"socialmetrics/internal/service"
	"socialmetrics/internal/store"
)

// fallbackDate stands in whenever a source date string fails to parse.
// Kept at this exact value for compatibility with previously stored
// payloads.
var fallbackDate = time.Date(2003, time.June, 26, 15, 0, 0, 0, time.UTC)

// dateLayouts are tried in order when parsing scraper date strings.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Jan 2, 2006 · 3:04 PM MST",
	"2/1/2006 15:04",
	"Jan 2, 2006",
}

// NormalizedTweet is one tweet in the canonical payload.
type NormalizedTweet struct {
	User       map[string]any   `json:"user"`
	URL        string           `json:"url"`
	Text       string           `json:"text"`
	Picture    string           `json:"picture"`
	Video      []string         `json:"video"`
	Statistics map[string]int64 `json:"statistics"`
	Datetime   string           `json:"datetime"`
}

// Payload is the normalized result persisted for a Twitter fetch.
type Payload struct {
	Profile map[string]any    `json:"profile"`
	Tweets  []NormalizedTweet `json:"tweets"`
}

// Options bound the fetch and the cache window.
type Options struct {
	MaxTweets    int
	CacheWindow  time.Duration
	DefaultVideo string
}

// Adapter fetches, normalizes and persists metrics for one Twitter profile.
type Adapter struct {
	username     string
	scraper      Scraper
	records      *store.Store
	maxTweets    int
	cacheWindow  time.Duration
	defaultVideo string
}

// NewAdapter creates an adapter for username backed by the given scraper
// and record store. Zero option values fall back to 20 tweets / 24h.
func NewAdapter(username string, scraper Scraper, records *store.Store, opts Options) *Adapter {
	if opts.MaxTweets <= 0 {
		opts.MaxTweets = 20
	}
	if opts.CacheWindow <= 0 {
		opts.CacheWindow = 24 * time.Hour
	}

	return &Adapter{
		username:     username,
		scraper:      scraper,
		records:      records,
		maxTweets:    opts.MaxTweets,
		cacheWindow:  opts.CacheWindow,
		defaultVideo: opts.DefaultVideo,
	}
}

func (a *Adapter) params() map[string]string {
	return map[string]string{"userName": a.username}
}

// Key identifies this adapter.
func (a *Adapter) Key() string {
	return fmt.Sprintf("adapter:twitter:%s", a.username)
}

// Get returns the normalized profile and tweet metrics for the username.
// With useCache set, a stored record within the freshness window is served
// instead of scraping. A fetch that cannot be persisted is still returned,
// wrapped with service.ErrPersistence.
func (a *Adapter) Get(ctx context.Context, useCache bool) (service.Result, error) {
	if useCache {
		hit, err := cache.Lookup(ctx, a.records, store.Twitter, a.params(), time.Time{}, a.cacheWindow)
		if err != nil {
			return service.Result{}, fmt.Errorf("cache lookup for %q failed: %w", a.username, err)
		}
		if hit != nil {
			slog.Info("twitter: serving cached record", "username", a.username, "cache_date", hit.CacheDate)
			return service.Result{
				Status:    http.StatusOK,
				Cached:    true,
				CacheDate: hit.CacheDate,
				Result:    json.RawMessage(hit.Record.Data),
			}, nil
		}
	}

	slog.Info("twitter: scraping", "username", a.username)
	tweets := a.fetchTweets(ctx)
	profile := a.fetchProfile(ctx)
	if len(tweets) == 0 || len(profile) == 0 {
		slog.Error("twitter: scraper returned no data", "username", a.username)
		return service.Result{
			Status: http.StatusInternalServerError,
			Error:  "twitter scraper couldn't fetch data",
		}, nil
	}

	payload := a.normalize(profile, tweets)

	result := service.Result{
		Status: http.StatusOK,
		Result: payload,
	}
	if _, err := a.records.Append(ctx, store.Twitter, a.params(), payload); err != nil {
		slog.Error("twitter: failed to persist fetch", "username", a.username, "error", err)
		return result, fmt.Errorf("%w: %v", service.ErrPersistence, err)
	}
	return result, nil
}

func (a *Adapter) fetchTweets(ctx context.Context) []Tweet {
	tweets, err := a.scraper.Tweets(ctx, a.username, a.maxTweets)
	if err != nil {
		slog.Error("twitter: error fetching tweets", "username", a.username, "error", err)
		return nil
	}
	return tweets
}

func (a *Adapter) fetchProfile(ctx context.Context) map[string]any {
	profile, err := a.scraper.Profile(ctx, a.username)
	if err != nil {
		slog.Error("twitter: error fetching profile", "username", a.username, "error", err)
		return nil
	}
	return profile
}

// normalize filters out tweets whose URL does not contain the queried
// username (the scraper occasionally leaks other accounts), extracts the
// canonical per-tweet fields and merges rounded averages into the profile
// stats.
func (a *Adapter) normalize(profile map[string]any, tweets []Tweet) Payload {
	kept := make([]NormalizedTweet, 0, len(tweets))
	var retweets, likes, comments, quotes int64

	for _, t := range tweets {
		if !strings.Contains(t.Link, a.username) {
			continue
		}

		url := t.Link
		if url == "" {
			url = "#"
		}
		picture := ""
		if len(t.Pictures) > 0 {
			picture = t.Pictures[0]
		}
		videos := t.Videos
		if videos == nil {
			videos = []string{a.defaultVideo}
		}
		stats := t.Stats
		if stats == nil {
			stats = map[string]int64{}
		}

		kept = append(kept, NormalizedTweet{
			User:       t.User,
			URL:        url,
			Text:       t.Text,
			Picture:    picture,
			Video:      videos,
			Statistics: stats,
			Datetime:   parseDate(t.Date).Format(time.RFC3339),
		})

		retweets += stats["retweets"]
		likes += stats["likes"]
		comments += stats["comments"]
		quotes += stats["quotes"]
	}

	n := int64(len(kept))
	avg := func(total int64) int64 {
		if n == 0 {
			return 0
		}
		return int64(math.Round(float64(total) / float64(n)))
	}

	prof := make(map[string]any, len(profile)+1)
	for k, v := range profile {
		prof[k] = v
	}
	joined, _ := prof["joined"].(string)
	prof["joined"] = parseDate(joined).Format(time.RFC3339)

	stats := make(map[string]any)
	if existing, ok := prof["stats"].(map[string]any); ok {
		for k, v := range existing {
			stats[k] = v
		}
	}
	stats["avgRetweets"] = avg(retweets)
	stats["avgLikes"] = avg(likes)
	stats["avgComments"] = avg(comments)
	stats["avgQuotes"] = avg(quotes)
	prof["stats"] = stats

	return Payload{Profile: prof, Tweets: kept}
}

// History returns one {date, stats} entry per distinct calendar day.
func (a *Adapter) History(ctx context.Context) ([]service.HistoryEntry, error) {
	records, err := a.records.UniqueByDay(ctx, store.Twitter, a.params())
	if err != nil {
		return nil, err
	}
	return service.HistoryFromRecords(records), nil
}

// All returns the stored records for the username, one per day when unique
// is set.
func (a *Adapter) All(ctx context.Context, unique bool) ([]store.FetchRecord, error) {
	if unique {
		return a.records.UniqueByDay(ctx, store.Twitter, a.params())
	}
	return a.records.All(ctx, store.Twitter, a.params())
}

// parseDate parses a scraper date string, normalizing to UTC. Unparseable
// input yields the fixed fallback date.
func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return fallbackDate
}
