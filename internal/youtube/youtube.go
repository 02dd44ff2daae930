// Package youtube adapts a YouTube channel to the canonical
// profile/items/stats shape via the Data API v3, caching fetches through
// the record store.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"socialmetrics/internal/cache"
	"socialmetrics/internal/fetcher"
	"socialmetrics/internal/ratelimit"
	"socialmetrics/internal/service"
	"socialmetrics/internal/store"
)

// DefaultBaseURL is the public Data API v3 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Profile is the normalized channel profile.
type Profile struct {
	Name     string           `json:"name"`
	UserName string           `json:"userName"`
	ID       string           `json:"id"`
	Joined   string           `json:"joined"`
	Image    string           `json:"image"`
	Country  string           `json:"country"`
	Stats    map[string]int64 `json:"stats"`
}

// Video is one normalized video entry.
type Video struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	PublishedAt string           `json:"publishedAt"`
	Image       string           `json:"image"`
	Statistics  map[string]int64 `json:"statistics"`
}

// Payload is the normalized result persisted for a YouTube fetch.
type Payload struct {
	Profile Profile `json:"profile"`
	Videos  []Video `json:"videos"`
}

// Options bound the fetch and the cache window.
type Options struct {
	MaxResults   int
	CacheWindow  time.Duration
	DefaultImage string
}

// Adapter fetches, normalizes and persists metrics for one channel. The
// identity key is the channel id; resolving a handle to an id is a separate
// lookup (ResolveByHandle).
type Adapter struct {
	channelID    string
	apiKey       string
	client       *fetcher.Client
	records      *store.Store
	maxResults   int
	cacheWindow  time.Duration
	defaultImage string
}

// NewAdapter creates an adapter for the given channel id. Zero option
// values fall back to 10 videos / 24h.
func NewAdapter(channelID, apiKey, baseURL string, records *store.Store, opts Options) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	if opts.CacheWindow <= 0 {
		opts.CacheWindow = 24 * time.Hour
	}

	return &Adapter{
		channelID:    channelID,
		apiKey:       apiKey,
		client:       fetcher.NewClient(baseURL),
		records:      records,
		maxResults:   opts.MaxResults,
		cacheWindow:  opts.CacheWindow,
		defaultImage: opts.DefaultImage,
	}
}

// ResolveByHandle builds an adapter for a channel handle like "@name".
// Previously stored payloads are consulted first: a profile whose userName
// matches the handle (case-insensitive) supplies the channel id without any
// network call. Otherwise the channel search API is queried and must return
// exactly one result.
func ResolveByHandle(ctx context.Context, handle, apiKey, baseURL string, records *store.Store, opts Options) (*Adapter, error) {
	if !strings.HasPrefix(handle, "@") || strings.Contains(handle, " ") {
		return nil, fetcher.NewValidationError(
			fmt.Sprintf("handle %q must start with '@' and contain no spaces", handle))
	}

	id, err := records.ChannelIDByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if id != "" {
		slog.Info("youtube: resolved handle from stored records", "handle", handle, "channel_id", id)
		return NewAdapter(id, apiKey, baseURL, records, opts), nil
	}

	slog.Info("youtube: resolving handle via channel search", "handle", handle)
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIYoutube); err != nil {
		return nil, err
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	var result channelListResponse
	if !fetcher.NewClient(baseURL).GetJSON(ctx, "/channels", map[string]string{
		"forHandle": handle,
		"part":      "id",
		"key":       apiKey,
	}, nil, &result) {
		return nil, fmt.Errorf("channel lookup for %q failed", handle)
	}

	if result.PageInfo.TotalResults != 1 || len(result.Items) == 0 || result.Items[0].ID == "" {
		return nil, fetcher.NewValidationError(
			fmt.Sprintf("channel for handle %q is ambiguous or not found", handle))
	}

	return NewAdapter(result.Items[0].ID, apiKey, baseURL, records, opts), nil
}

func (a *Adapter) params() map[string]string {
	return map[string]string{"id": a.channelID}
}

// Key identifies this adapter.
func (a *Adapter) Key() string {
	return fmt.Sprintf("adapter:youtube:%s", a.channelID)
}

// Get returns the normalized channel and video metrics. With useCache set,
// a stored record within the freshness window is served instead of calling
// the API. A fetch that cannot be persisted is still returned, wrapped with
// service.ErrPersistence.
func (a *Adapter) Get(ctx context.Context, useCache bool) (service.Result, error) {
	if useCache {
		hit, err := cache.Lookup(ctx, a.records, store.Youtube, a.params(), time.Time{}, a.cacheWindow)
		if err != nil {
			return service.Result{}, fmt.Errorf("cache lookup for channel %q failed: %w", a.channelID, err)
		}
		if hit != nil {
			slog.Info("youtube: serving cached record", "channel_id", a.channelID, "cache_date", hit.CacheDate)
			return service.Result{
				Status:    http.StatusOK,
				Cached:    true,
				CacheDate: hit.CacheDate,
				Result:    json.RawMessage(hit.Record.Data),
			}, nil
		}
	}

	slog.Info("youtube: fetching channel", "channel_id", a.channelID)
	channel := a.fetchChannel(ctx)
	videos := a.fetchVideos(ctx)
	if channel == nil || len(videos) == 0 {
		slog.Error("youtube: api returned no data", "channel_id", a.channelID)
		return service.Result{
			Status: http.StatusInternalServerError,
			Error:  "youtube api couldn't fetch data",
		}, nil
	}

	payload := a.normalize(channel, videos)

	result := service.Result{
		Status: http.StatusOK,
		Result: payload,
	}
	if _, err := a.records.Append(ctx, store.Youtube, a.params(), payload); err != nil {
		slog.Error("youtube: failed to persist fetch", "channel_id", a.channelID, "error", err)
		return result, fmt.Errorf("%w: %v", service.ErrPersistence, err)
	}
	return result, nil
}

// fetchChannel retrieves statistics, status and snippet for the channel id.
// The API must return exactly one channel.
func (a *Adapter) fetchChannel(ctx context.Context) *channelItem {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIYoutube); err != nil {
		return nil
	}

	var result channelListResponse
	if !a.client.GetJSON(ctx, "/channels", map[string]string{
		"part": "statistics,status,snippet",
		"id":   a.channelID,
		"key":  a.apiKey,
	}, nil, &result) {
		return nil
	}

	if result.PageInfo.TotalResults != 1 || len(result.Items) == 0 {
		slog.Error("youtube: no single channel for id", "channel_id", a.channelID, "total_results", result.PageInfo.TotalResults)
		return nil
	}
	return &result.Items[0]
}

// fetchVideos searches the newest videos of the channel, then fetches their
// full details. Either step coming back empty fails the whole fetch.
func (a *Adapter) fetchVideos(ctx context.Context) []videoItem {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIYoutube); err != nil {
		return nil
	}

	var search searchListResponse
	if !a.client.GetJSON(ctx, "/search", map[string]string{
		"channelId":  a.channelID,
		"maxResults": strconv.Itoa(a.maxResults),
		"order":      "date",
		"type":       "video",
		"key":        a.apiKey,
	}, nil, &search) {
		return nil
	}

	var ids []string
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		slog.Error("youtube: search returned no videos", "channel_id", a.channelID)
		return nil
	}

	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIYoutube); err != nil {
		return nil
	}

	var videos videoListResponse
	if !a.client.GetJSON(ctx, "/videos", map[string]string{
		"part": "id,snippet,statistics",
		"id":   strings.Join(ids, ","),
		"key":  a.apiKey,
	}, nil, &videos) {
		return nil
	}
	return videos.Items
}

// normalize extracts the canonical channel and video fields and merges
// rounded per-video averages into the profile stats. The channel's joined
// date is kept as delivered by the API.
func (a *Adapter) normalize(channel *channelItem, videos []videoItem) Payload {
	image := channel.Snippet.Thumbnails.High.URL
	if image == "" {
		image = a.defaultImage
	}

	profile := Profile{
		Name:     channel.Snippet.Title,
		UserName: channel.Snippet.CustomURL,
		ID:       channel.ID,
		Joined:   channel.Snippet.PublishedAt,
		Image:    image,
		Country:  channel.Snippet.Country,
		Stats: map[string]int64{
			"views":       coerceInt(channel.Statistics["viewCount"]),
			"subscribers": coerceInt(channel.Statistics["subscriberCount"]),
			"videos":      coerceInt(channel.Statistics["videoCount"]),
		},
	}

	var views, likes, comments int64
	normalized := make([]Video, 0, len(videos))
	for _, v := range videos {
		stats := make(map[string]int64, len(v.Statistics))
		for field, raw := range v.Statistics {
			stats[field] = coerceInt(raw)
		}

		thumb := v.Snippet.Thumbnails.Standard.URL
		if thumb == "" {
			thumb = a.defaultImage
		}

		normalized = append(normalized, Video{
			ID:          v.ID,
			Title:       v.Snippet.Title,
			PublishedAt: v.Snippet.PublishedAt,
			Image:       thumb,
			Statistics:  stats,
		})

		views += stats["viewCount"]
		likes += stats["likeCount"]
		comments += stats["commentCount"]
	}

	n := int64(len(videos))
	avg := func(total int64) int64 {
		if n == 0 {
			return 0
		}
		return int64(math.Round(float64(total) / float64(n)))
	}
	profile.Stats["avgViews"] = avg(views)
	profile.Stats["avgLikes"] = avg(likes)
	profile.Stats["avgComments"] = avg(comments)

	return Payload{Profile: profile, Videos: normalized}
}

// History returns one {date, stats} entry per distinct calendar day.
func (a *Adapter) History(ctx context.Context) ([]service.HistoryEntry, error) {
	records, err := a.records.UniqueByDay(ctx, store.Youtube, a.params())
	if err != nil {
		return nil, err
	}
	return service.HistoryFromRecords(records), nil
}

// All returns the stored records for the channel, one per day when unique
// is set.
func (a *Adapter) All(ctx context.Context, unique bool) ([]store.FetchRecord, error) {
	if unique {
		return a.records.UniqueByDay(ctx, store.Youtube, a.params())
	}
	return a.records.All(ctx, store.Youtube, a.params())
}

// coerceInt converts an API statistic to an integer. Anything that is not
// a plain run of digits becomes 0.
func coerceInt(s string) int64 {
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
