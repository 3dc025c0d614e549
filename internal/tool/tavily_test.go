package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestTavilySearchSendsFixedOptions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"query": "refund law",
			"answer": "Section 2(11) of the Consumer Protection Act covers deficiency in service.",
			"results": [
				{"title": "CPA 2019", "url": "https://example.org/cpa", "content": "Deficiency   in\nservice means..."},
				{"title": "Extra", "url": "https://example.org/extra", "content": "ignored"}
			]
		}`))
	}))
	defer srv.Close()

	tv := NewTavily("tvly-test", srv.URL, time.Second)
	record, err := tv.Search(context.Background(), "refund law", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := map[string]any{
		"api_key":             "tvly-test",
		"query":               "refund law",
		"search_depth":        "basic",
		"max_results":         float64(1),
		"include_answer":      true,
		"include_raw_content": false,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("request %s = %v, want %v", k, got[k], v)
		}
	}

	if len(record.Results) != 1 {
		t.Fatalf("expected results trimmed to 1, got %d", len(record.Results))
	}
	if record.Results[0].Content != "Deficiency in service means..." {
		t.Errorf("snippet not cleaned: %q", record.Results[0].Content)
	}
	if record.Answer == "" {
		t.Error("expected synthesized answer")
	}
}

func TestTavilyRetriesOnRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	tv := NewTavily("tvly-test", srv.URL, time.Second)
	tv.retryDelay = time.Millisecond
	record, err := tv.Search(context.Background(), "q", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !record.Empty() {
		t.Errorf("expected empty record, got %+v", record)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestTavilyErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := NewTavily("tvly-test", srv.URL, time.Second).Search(context.Background(), "q", DefaultSearchOptions()); err == nil {
		t.Error("expected error for 401")
	}
	if _, err := NewTavily("", srv.URL, time.Second).Search(context.Background(), "q", DefaultSearchOptions()); err == nil {
		t.Error("expected error for missing key")
	}
}
