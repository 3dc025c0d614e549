package tool

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

type fakeSearcher struct {
	record  domain.SearchRecord
	err     error
	queries []string
	opts    domain.SearchOptions
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(ctx context.Context, query string, opts domain.SearchOptions) (domain.SearchRecord, error) {
	f.queries = append(f.queries, query)
	f.opts = opts
	return f.record, f.err
}

func TestSearchToolManagerRegistersSingleTool(t *testing.T) {
	m := NewSearchToolManager(&fakeSearcher{}, DefaultSearchOptions())
	tools := m.GetTools()
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	tool, ok := tools[SearchToolName]
	if !ok {
		t.Fatalf("missing %s", SearchToolName)
	}
	args := tool.Arguments()
	if len(args) != 1 || args[0].Name != "query" || !args[0].Required || args[0].Type != "string" {
		t.Errorf("unexpected arguments %+v", args)
	}
}

func TestSearchToolManagerCallTool(t *testing.T) {
	searcher := &fakeSearcher{record: domain.SearchRecord{
		Query:   "refund",
		Answer:  "Consumer Protection Act, 2019",
		Results: []domain.SearchResult{{Title: "CPA", URL: "https://example.org", Content: "text"}},
	}}
	m := NewSearchToolManager(searcher, DefaultSearchOptions())

	res, err := m.CallTool(context.Background(), SearchToolName, message.ToolArgumentValues{"query": " refund "})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	record, err := domain.ParseSearchRecord(res.Text)
	if err != nil {
		t.Fatalf("result is not a search record: %v", err)
	}
	if record.Answer != "Consumer Protection Act, 2019" || len(record.Results) != 1 {
		t.Errorf("unexpected record %+v", record)
	}
	if searcher.queries[0] != "refund" {
		t.Errorf("query not trimmed: %q", searcher.queries[0])
	}
	if searcher.opts != DefaultSearchOptions() {
		t.Errorf("options not forwarded: %+v", searcher.opts)
	}
}

func TestSearchToolManagerFailure(t *testing.T) {
	m := NewSearchToolManager(&fakeSearcher{err: errors.New("timeout")}, DefaultSearchOptions())

	_, err := m.CallTool(context.Background(), SearchToolName, message.ToolArgumentValues{"query": "refund"})
	var tie *domain.ToolInvocationError
	if !errors.As(err, &tie) {
		t.Fatalf("expected ToolInvocationError, got %v", err)
	}
	if tie.Query != "refund" {
		t.Errorf("query = %q", tie.Query)
	}

	res, err := m.CallTool(context.Background(), SearchToolName, message.ToolArgumentValues{})
	if err != nil || res.Error == "" {
		t.Errorf("missing query should be a tool error result, got %+v %v", res, err)
	}

	res, _ = m.CallTool(context.Background(), "other", nil)
	if res.Error == "" {
		t.Error("unknown tool should be a tool error result")
	}
}
