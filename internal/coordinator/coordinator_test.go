package coordinator

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"socialmetrics/internal/service"
	"socialmetrics/internal/testutil"
)

func TestNew(t *testing.T) {
	adapters := []service.Adapter{
		testutil.NewMockAdapter("adapter:twitter:jane", service.Result{Status: http.StatusOK}, nil),
		testutil.NewMockAdapter("adapter:youtube:UC123", service.Result{Status: http.StatusOK}, nil),
	}

	coord := New(adapters, true)
	if coord == nil {
		t.Fatal("New() returned nil")
	}

	if len(coord.adapters) != len(adapters) {
		t.Errorf("New() created coordinator with %d adapters, want %d", len(coord.adapters), len(adapters))
	}
}

func TestRun_Success(t *testing.T) {
	adapters := []service.Adapter{
		testutil.NewMockAdapter("adapter:twitter:jane", service.Result{Status: http.StatusOK}, nil),
		testutil.NewMockAdapter("adapter:twitter:john", service.Result{Status: http.StatusOK, Cached: true, CacheDate: "2025-08-25"}, nil),
		testutil.NewMockAdapter("adapter:youtube:UC123", service.Result{Status: http.StatusOK}, nil),
	}

	coord := New(adapters, true)
	ctx := context.Background()

	err := coord.Run(ctx)
	if err != nil {
		t.Errorf("Run() returned unexpected error: %v", err)
	}
}

func TestRun_WithErrors(t *testing.T) {
	adapters := []service.Adapter{
		testutil.NewMockAdapter("adapter:twitter:jane", service.Result{Status: http.StatusOK}, nil),
		testutil.NewMockAdapter("adapter:twitter:down",
			service.Result{Status: http.StatusInternalServerError, Error: "twitter scraper couldn't fetch data"}, nil),
		testutil.NewMockAdapter("adapter:youtube:UC123",
			service.Result{Status: http.StatusOK},
			fmt.Errorf("%w: disk full", service.ErrPersistence)),
	}

	coord := New(adapters, true)
	ctx := context.Background()

	// Run reports per-adapter outcomes, it does not fail as a whole
	err := coord.Run(ctx)
	if err != nil {
		t.Errorf("Run() returned unexpected error: %v", err)
	}
}

func TestRun_PassesUseCache(t *testing.T) {
	var got []bool
	adapter := &testutil.MockAdapter{
		GetFunc: func(ctx context.Context, useCache bool) (service.Result, error) {
			got = append(got, useCache)
			return service.Result{Status: http.StatusOK}, nil
		},
	}

	for _, useCache := range []bool{true, false} {
		got = nil
		if err := New([]service.Adapter{adapter}, useCache).Run(context.Background()); err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != useCache {
			t.Errorf("Get called with useCache = %v, want %v", got, useCache)
		}
	}
}

func TestRun_NoAdapters(t *testing.T) {
	coord := New([]service.Adapter{}, true)
	ctx := context.Background()

	err := coord.Run(ctx)
	if err == nil {
		t.Error("Run() expected error for no adapters, got nil")
	}

	expectedErrMsg := "no adapters configured"
	if err.Error() != expectedErrMsg {
		t.Errorf("Run() error = %q, want %q", err.Error(), expectedErrMsg)
	}
}
