// Package cache decides whether a stored fetch record is fresh enough to
// serve instead of hitting the upstream again.
package cache

import (
	"context"
	"log/slog"
	"time"

	"socialmetrics/internal/store"
)

// RecentFinder is the slice of the record store the cache needs.
type RecentFinder interface {
	MostRecent(ctx context.Context, service store.Service, params map[string]string, asOf time.Time) (*store.FetchRecord, error)
}

// Hit is a cache hit: the record to serve and its creation date.
type Hit struct {
	Record    store.FetchRecord
	CacheDate string
}

// Lookup returns the most recent record for (service, params) created at or
// before asOf, provided its age does not exceed window. A record exactly at
// the window boundary is still a hit. A zero asOf means "now", evaluated at
// call time. Returns (nil, nil) on a miss.
func Lookup(ctx context.Context, finder RecentFinder, service store.Service, params map[string]string, asOf time.Time, window time.Duration) (*Hit, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	rec, err := finder.MostRecent(ctx, service, params, asOf)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		slog.Debug("cache: no prior record", "service", service, "params", params)
		return nil, nil
	}

	if asOf.Sub(rec.CreatedAt) > window {
		slog.Debug("cache: record too old", "service", service, "params", params, "created_at", rec.CreatedAt)
		return nil, nil
	}

	return &Hit{
		Record:    *rec,
		CacheDate: rec.CreatedAt.UTC().Format("2006-01-02"),
	}, nil
}
