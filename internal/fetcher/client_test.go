package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type quoteResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func TestGetJSON_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test_key" {
			t.Errorf("key = %q, want %q", got, "test_key")
		}
		if got := r.Header.Get("X-Extra"); got != "yes" {
			t.Errorf("X-Extra = %q, want %q", got, "yes")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "hello", "count": 3}`))
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	client := NewClient(server.URL)
	var result quoteResponse

	ok := client.GetJSON(context.Background(), "/data",
		map[string]string{"key": "test_key"},
		map[string]string{"X-Extra": "yes"},
		&result)
	if !ok {
		t.Fatal("GetJSON() = false, want true")
	}

	if result.Message != "hello" || result.Count != 3 {
		t.Errorf("result = %+v, want {hello 3}", result)
	}
}

func TestGetJSON_ErrorStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError} {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		server := httptest.NewServer(handler)

		client := NewClient(server.URL)
		var result quoteResponse

		if client.GetJSON(context.Background(), "/data", nil, nil, &result) {
			t.Errorf("GetJSON() = true for status %d, want false", status)
		}
		if result != (quoteResponse{}) {
			t.Errorf("result = %+v, want untouched zero value", result)
		}

		server.Close()
	}
}

func TestGetJSON_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL)
	var result quoteResponse

	if client.GetJSON(context.Background(), "/data", nil, nil, &result) {
		t.Error("GetJSON() = true for unreachable server, want false")
	}
}

func TestGetJSON_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var result quoteResponse
	if client.GetJSON(ctx, "/data", nil, nil, &result) {
		t.Error("GetJSON() = true for cancelled context, want false")
	}
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		statusCode int
		wantType   ErrorType
	}{
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServer},
		{503, ErrorTypeServer},
		{400, ErrorTypeClient},
		{404, ErrorTypeClient},
		{302, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyHTTPError(tt.statusCode); got.Type != tt.wantType {
			t.Errorf("ClassifyHTTPError(%d).Type = %q, want %q", tt.statusCode, got.Type, tt.wantType)
		}
	}
}
