package domain

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// SearchResult is a single search hit. Content is a snippet, never the full page.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchRecord is what one search invocation produced.
type SearchRecord struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// Empty reports whether the search yielded nothing the model could cite.
func (r SearchRecord) Empty() bool {
	return r.Answer == "" && len(r.Results) == 0
}

// ParseSearchRecord decodes the JSON text of a search tool result.
func ParseSearchRecord(text string) (SearchRecord, error) {
	var record SearchRecord
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return SearchRecord{}, errors.Wrap(err, "invalid search record")
	}
	return record, nil
}

// SearchOptions are the fixed limits applied to every search request.
type SearchOptions struct {
	MaxResults        int    `json:"max_results"`
	Depth             string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

// Searcher is a web-search provider.
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) (SearchRecord, error)
	Name() string
}
