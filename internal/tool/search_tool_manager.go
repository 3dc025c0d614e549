package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/logger"
	"github.com/fpt/notice-cli/pkg/message"
)

// SearchToolName is the tool name the model sees, whichever provider backs it.
const SearchToolName message.ToolName = "tavily_search_results_json"

const searchToolDescription = "A search engine optimized for comprehensive, accurate, and trusted results. " +
	"Useful for when you need to answer questions about current events and the laws, acts and regulations " +
	"that apply to a consumer complaint. Input should be a search query."

// DefaultSearchOptions are the fixed limits of the legal research tool.
func DefaultSearchOptions() domain.SearchOptions {
	return domain.SearchOptions{
		MaxResults:        1,
		Depth:             "basic",
		IncludeAnswer:     true,
		IncludeRawContent: false,
	}
}

// SearchToolManager exposes a single web-search tool backed by a domain.Searcher.
type SearchToolManager struct {
	tools    map[message.ToolName]message.Tool
	searcher domain.Searcher
	options  domain.SearchOptions
	logger   *logger.Logger
}

// NewSearchToolManager registers the search tool over searcher.
func NewSearchToolManager(searcher domain.Searcher, opts domain.SearchOptions) *SearchToolManager {
	m := &SearchToolManager{
		tools:    make(map[message.ToolName]message.Tool),
		searcher: searcher,
		options:  opts,
		logger:   logger.NewComponentLogger("search"),
	}
	m.RegisterTool(SearchToolName, searchToolDescription, ArgumentsFromSchema(&SearchArgs{}), m.handleSearch)
	return m
}

// Options returns the limits applied to every search.
func (m *SearchToolManager) Options() domain.SearchOptions { return m.options }

func (m *SearchToolManager) GetTools() map[message.ToolName]message.Tool { return m.tools }

func (m *SearchToolManager) RegisterTool(name message.ToolName, desc message.ToolDescription, args []message.ToolArgument, handler func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error)) {
	m.tools[name] = &searchTool{name: name, description: desc, arguments: args, handler: handler}
}

func (m *SearchToolManager) CallTool(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
	t, ok := m.tools[name]
	if !ok {
		return message.NewToolResultError(fmt.Sprintf("tool %s not found", name)), nil
	}
	return t.Handler()(ctx, args)
}

// handleSearch runs one search and returns the record as JSON.
// Provider failures are returned as *domain.ToolInvocationError.
func (m *SearchToolManager) handleSearch(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	query := strings.TrimSpace(args.String("query"))
	if query == "" {
		return message.NewToolResultError("query parameter is required"), nil
	}

	start := time.Now()
	m.logger.InfoWithIntention(logger.IntentionSearch, "Searching legal sources",
		"provider", m.searcher.Name(), "query", query)

	record, err := m.searcher.Search(ctx, query, m.options)
	if err != nil {
		m.logger.WarnWithIntention(logger.IntentionWarning, "Search failed",
			"provider", m.searcher.Name(), "error", err)
		return message.ToolResult{}, &domain.ToolInvocationError{Tool: string(SearchToolName), Query: query, Err: err}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return message.ToolResult{}, &domain.ToolInvocationError{
			Tool: string(SearchToolName), Query: query, Err: errors.Wrap(err, "failed to encode search record"),
		}
	}

	m.logger.DebugWithIntention(logger.IntentionSearch, "Search finished",
		"results", len(record.Results), "answer", record.Answer != "", "duration", time.Since(start))
	return message.NewToolResultText(string(data)), nil
}

type searchTool struct {
	name        message.ToolName
	description message.ToolDescription
	arguments   []message.ToolArgument
	handler     func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error)
}

func (t *searchTool) Name() message.ToolName               { return t.name }
func (t *searchTool) Description() message.ToolDescription { return t.description }
func (t *searchTool) Arguments() []message.ToolArgument    { return t.arguments }
func (t *searchTool) Handler() func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	return t.handler
}
