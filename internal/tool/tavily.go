package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
)

const (
	// TavilyBaseURL is the public Tavily API endpoint.
	TavilyBaseURL = "https://api.tavily.com"

	maxSearchRetries = 3
)

// Tavily calls the Tavily search API.
type Tavily struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	retryDelay time.Duration
}

// NewTavily constructs a Tavily searcher. An empty baseURL selects TavilyBaseURL.
func NewTavily(apiKey, baseURL string, timeout time.Duration) *Tavily {
	if baseURL == "" {
		baseURL = TavilyBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Tavily{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		retryDelay: time.Second,
	}
}

func (t *Tavily) Name() string { return "tavily" }

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search posts a query to Tavily, retrying on 429 with a doubling delay.
func (t *Tavily) Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchRecord, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return domain.SearchRecord{}, errors.New("tavily: API key is missing")
	}
	if strings.TrimSpace(query) == "" {
		return domain.SearchRecord{}, errors.New("tavily: query is empty")
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:            t.apiKey,
		Query:             query,
		SearchDepth:       opts.Depth,
		MaxResults:        opts.MaxResults,
		IncludeAnswer:     opts.IncludeAnswer,
		IncludeRawContent: opts.IncludeRawContent,
	})
	if err != nil {
		return domain.SearchRecord{}, errors.Wrap(err, "tavily: failed to encode request")
	}

	var resp *http.Response
	delay := t.retryDelay
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(payload))
		if err != nil {
			return domain.SearchRecord{}, errors.Wrap(err, "tavily: failed to create request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = t.client.Do(req)
		if err != nil {
			return domain.SearchRecord{}, errors.Wrap(err, "tavily: request failed")
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxSearchRetries {
			break
		}
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return domain.SearchRecord{}, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.SearchRecord{}, errors.Errorf("tavily: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return domain.SearchRecord{}, errors.Wrap(err, "tavily: failed to decode response")
	}

	record := domain.SearchRecord{Query: query, Answer: strings.TrimSpace(response.Answer)}
	for _, r := range response.Results {
		record.Results = append(record.Results, domain.SearchResult{
			Title:   strings.TrimSpace(r.Title),
			URL:     r.URL,
			Content: cleanSnippet(r.Content),
		})
		if opts.MaxResults > 0 && len(record.Results) >= opts.MaxResults {
			break
		}
	}
	return record, nil
}
