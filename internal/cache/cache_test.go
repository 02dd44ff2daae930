package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"socialmetrics/internal/store"
)

type stubFinder struct {
	record  *store.FetchRecord
	err     error
	gotAsOf time.Time
}

func (f *stubFinder) MostRecent(ctx context.Context, service store.Service, params map[string]string, asOf time.Time) (*store.FetchRecord, error) {
	f.gotAsOf = asOf
	return f.record, f.err
}

func record(createdAt time.Time) *store.FetchRecord {
	return &store.FetchRecord{
		ID:        "rec-1",
		CreatedAt: createdAt,
		Service:   store.Twitter,
		Params:    `{"userName":"jane"}`,
		Data:      json.RawMessage(`{"profile":{"stats":{}}}`),
	}
}

func TestLookup_FreshnessBoundary(t *testing.T) {
	window := time.Hour
	t0 := time.Date(2025, time.August, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		asOf    time.Time
		wantHit bool
	}{
		{"well within window", t0.Add(window / 2), true},
		{"exactly at boundary", t0.Add(window), true},
		{"one second past boundary", t0.Add(window + time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &stubFinder{record: record(t0)}
			hit, err := Lookup(context.Background(), finder, store.Twitter, map[string]string{"userName": "jane"}, tt.asOf, window)
			if err != nil {
				t.Fatalf("Lookup() returned unexpected error: %v", err)
			}
			if (hit != nil) != tt.wantHit {
				t.Errorf("Lookup() hit = %v, want %v", hit != nil, tt.wantHit)
			}
		})
	}
}

func TestLookup_NoRecordIsMiss(t *testing.T) {
	finder := &stubFinder{}
	hit, err := Lookup(context.Background(), finder, store.Twitter, map[string]string{"userName": "jane"}, time.Now().UTC(), time.Hour)
	if err != nil {
		t.Fatalf("Lookup() returned unexpected error: %v", err)
	}
	if hit != nil {
		t.Errorf("Lookup() = %+v, want miss", hit)
	}
}

func TestLookup_PropagatesStoreError(t *testing.T) {
	storeErr := errors.New("database locked")
	finder := &stubFinder{err: storeErr}

	_, err := Lookup(context.Background(), finder, store.Twitter, map[string]string{"userName": "jane"}, time.Now().UTC(), time.Hour)
	if !errors.Is(err, storeErr) {
		t.Errorf("Lookup() error = %v, want %v", err, storeErr)
	}
}

func TestLookup_ZeroAsOfEvaluatedPerCall(t *testing.T) {
	finder := &stubFinder{record: record(time.Now().UTC().Add(-time.Minute))}

	before := time.Now().UTC()
	hit, err := Lookup(context.Background(), finder, store.Twitter, map[string]string{"userName": "jane"}, time.Time{}, time.Hour)
	after := time.Now().UTC()

	if err != nil {
		t.Fatalf("Lookup() returned unexpected error: %v", err)
	}
	if hit == nil {
		t.Fatal("Lookup() = miss, want hit")
	}
	if finder.gotAsOf.Before(before) || finder.gotAsOf.After(after) {
		t.Errorf("asOf = %v, want a per-call now between %v and %v", finder.gotAsOf, before, after)
	}
}

func TestLookup_CacheDate(t *testing.T) {
	t0 := time.Date(2025, time.August, 25, 23, 59, 0, 0, time.UTC)
	finder := &stubFinder{record: record(t0)}

	hit, err := Lookup(context.Background(), finder, store.Twitter, map[string]string{"userName": "jane"}, t0.Add(time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("Lookup() returned unexpected error: %v", err)
	}
	if hit == nil {
		t.Fatal("Lookup() = miss, want hit")
	}
	if hit.CacheDate != "2025-08-25" {
		t.Errorf("CacheDate = %q, want %q", hit.CacheDate, "2025-08-25")
	}
}
