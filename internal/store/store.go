// Package store persists fetch results as an append-only table of
// timestamped records. Records are never updated or deleted; the cache
// layer and the history views are plain queries over this table.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Service identifies the upstream a record was fetched from.
type Service string

const (
	Twitter   Service = "Twitter"
	Youtube   Service = "Youtube"
	Instagram Service = "Instagram"
	Facebook  Service = "Facebook"
)

// Valid reports whether s is one of the known services.
func (s Service) Valid() bool {
	switch s {
	case Twitter, Youtube, Instagram, Facebook:
		return true
	}
	return false
}

// Schema creates the fetch_records table. created_at is unix seconds (UTC);
// params holds the canonical JSON of the identity key so exact-match lookups
// are a plain string comparison.
const Schema = `
CREATE TABLE IF NOT EXISTS fetch_records (
    id         TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    service    TEXT NOT NULL CHECK(service IN ('Twitter','Youtube','Instagram','Facebook')),
    params     TEXT NOT NULL,
    data       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fetch_records_lookup
    ON fetch_records(service, params, created_at);
`

// FetchRecord is one persisted fetch result.
type FetchRecord struct {
	ID        string
	CreatedAt time.Time
	Service   Service
	Params    string
	Data      json.RawMessage
}

// Store wraps the sqlite handle holding fetch records.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the sqlite database at path and ensures the
// schema exists. Pragmas ride in the DSN so every connection gets them,
// and the pool is capped at one connection: each connection to ":memory:"
// is a separate database, and a single writer keeps concurrent Appends
// from tripping over SQLITE_BUSY.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the insertion clock. Intended for tests that need
// records at controlled timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// CanonicalParams renders an identity key as canonical JSON. json.Marshal
// sorts map keys, so equal parameter sets always produce the same string.
func CanonicalParams(params map[string]string) (string, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}
	return string(b), nil
}

// Append inserts a new record for (service, params) holding the given
// payload. The creation timestamp is taken at insertion. Storage failures
// are returned to the caller, not swallowed.
func (s *Store) Append(ctx context.Context, service Service, params map[string]string, payload any) (FetchRecord, error) {
	if !service.Valid() {
		return FetchRecord{}, fmt.Errorf("unsupported service %q", service)
	}

	canonical, err := CanonicalParams(params)
	if err != nil {
		return FetchRecord{}, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return FetchRecord{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	rec := FetchRecord{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC().Truncate(time.Second),
		Service:   service,
		Params:    canonical,
		Data:      data,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO fetch_records (id, created_at, service, params, data) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Unix(), string(rec.Service), rec.Params, string(rec.Data))
	if err != nil {
		return FetchRecord{}, fmt.Errorf("failed to insert fetch record: %w", err)
	}

	slog.Info("store: appended fetch record", "service", service, "params", canonical, "id", rec.ID)
	return rec, nil
}

// All returns every record for (service, params) in insertion order.
func (s *Store) All(ctx context.Context, service Service, params map[string]string) ([]FetchRecord, error) {
	canonical, err := CanonicalParams(params)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, service, params, data
		 FROM fetch_records
		 WHERE service = ? AND params = ?
		 ORDER BY created_at ASC, rowid ASC`,
		string(service), canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// MostRecent returns the newest record for (service, params) created at or
// before asOf, or nil when none exists.
func (s *Store) MostRecent(ctx context.Context, service Service, params map[string]string, asOf time.Time) (*FetchRecord, error) {
	canonical, err := CanonicalParams(params)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, service, params, data
		 FROM fetch_records
		 WHERE service = ? AND params = ? AND created_at <= ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT 1`,
		string(service), canonical, asOf.UTC().Unix())

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query most recent record: %w", err)
	}
	return &rec, nil
}

// UniqueByDay returns one record per distinct UTC calendar day for
// (service, params): the first record inserted on that day. Days are
// returned in ascending creation order.
func (s *Store) UniqueByDay(ctx context.Context, service Service, params map[string]string) ([]FetchRecord, error) {
	canonical, err := CanonicalParams(params)
	if err != nil {
		return nil, err
	}

	// sqlite resolves the bare columns to the row carrying MIN(rowid),
	// giving a stable per-day representative.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, service, params, data, MIN(rowid)
		 FROM fetch_records
		 WHERE service = ? AND params = ?
		 GROUP BY date(created_at, 'unixepoch')
		 ORDER BY created_at ASC`,
		string(service), canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to query day-unique records: %w", err)
	}
	defer rows.Close()

	var records []FetchRecord
	for rows.Next() {
		var (
			rec     FetchRecord
			created int64
			svc     string
			data    string
			rowid   int64
		)
		if err := rows.Scan(&rec.ID, &created, &svc, &rec.Params, &data, &rowid); err != nil {
			return nil, fmt.Errorf("failed to scan fetch record: %w", err)
		}
		rec.CreatedAt = time.Unix(created, 0).UTC()
		rec.Service = Service(svc)
		rec.Data = json.RawMessage(data)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ChannelIDByHandle looks up a previously stored YouTube channel id by the
// handle recorded in the payload's profile. This is a read-only
// back-reference over stored payload content, not separate state; it
// returns "" when no stored profile matches.
func (s *Store) ChannelIDByHandle(ctx context.Context, handle string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(json_extract(data, '$.profile.id'), '')
		 FROM fetch_records
		 WHERE service = 'Youtube'
		   AND lower(COALESCE(json_extract(data, '$.profile.userName'), '')) = lower(?)
		 ORDER BY rowid ASC
		 LIMIT 1`,
		handle)

	var id string
	err := row.Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query channel id for handle %q: %w", handle, err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (FetchRecord, error) {
	var (
		rec     FetchRecord
		created int64
		service string
		data    string
	)
	if err := row.Scan(&rec.ID, &created, &service, &rec.Params, &data); err != nil {
		return FetchRecord{}, err
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	rec.Service = Service(service)
	rec.Data = json.RawMessage(data)
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]FetchRecord, error) {
	var records []FetchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
