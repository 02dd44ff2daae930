// Package service defines the capability shared by all social-media
// adapters and the envelope their operations return.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"socialmetrics/internal/store"
)

// ErrPersistence marks a fetch that succeeded upstream but could not be
// saved. The envelope returned alongside it still carries the normalized
// payload, so the caller decides whether to retry or serve it unsaved.
var ErrPersistence = errors.New("failed to persist fetch result")

// Result is the envelope every adapter Get returns.
type Result struct {
	Status    int    `json:"status"`
	Cached    bool   `json:"cache_response"`
	CacheDate string `json:"cache_date,omitempty"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HistoryEntry is one day's profile statistics.
type HistoryEntry struct {
	Date  string                 `json:"date"`
	Stats map[string]json.Number `json:"stats"`
}

// Adapter is the closed set of operations a social-media service supports.
// Each variant supplies its own fetch and normalization logic.
type Adapter interface {
	// Get returns the normalized metrics for the adapter's subject,
	// served from a fresh stored record when useCache is set.
	Get(ctx context.Context, useCache bool) (Result, error)

	// History returns one {date, stats} entry per distinct calendar day.
	History(ctx context.Context) ([]HistoryEntry, error)

	// All returns the stored records for the subject, optionally reduced
	// to one per day.
	All(ctx context.Context, unique bool) ([]store.FetchRecord, error)

	// Key identifies the adapter, format adapter:{service}:{subject}.
	Key() string
}

// payloadProbe pulls profile.stats out of a stored payload without
// committing to the rest of its service-specific shape.
type payloadProbe struct {
	Profile struct {
		Stats map[string]json.Number `json:"stats"`
	} `json:"profile"`
}

// HistoryFromRecords builds history entries from day-unique records. A
// malformed payload still yields its date, with nil stats.
func HistoryFromRecords(records []store.FetchRecord) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		var probe payloadProbe
		if err := json.Unmarshal(rec.Data, &probe); err != nil {
			slog.Warn("history: malformed stored payload", "id", rec.ID, "error", err)
		}
		entries = append(entries, HistoryEntry{
			Date:  rec.CreatedAt.UTC().Format("2006-01-02"),
			Stats: probe.Profile.Stats,
		})
	}
	return entries
}
