package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/app"
	"github.com/fpt/notice-cli/internal/tool"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

const (
	ServerName     = "notice"
	ServerVersion  = "1.0.0"
	DraftToolName  = "draft_legal_notice"
	ClearToolName  = "clear_history"
	defaultSession = "default"
)

// DraftArgs are the arguments of draft_legal_notice.
type DraftArgs struct {
	Grievance string `json:"grievance" jsonschema:"description=The consumer's grievance in their own words"`
	SessionID string `json:"session_id,omitempty" jsonschema:"description=Conversation to continue; omitted uses the default conversation"`
}

// ClearArgs are the arguments of clear_history.
type ClearArgs struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"description=Conversation to clear; omitted clears the default conversation"`
}

// Server exposes notice drafting as MCP tools.
type Server struct {
	mcp    *server.MCPServer
	store  *app.SessionStore
	logger *pkgLogger.Logger
}

// NewServer creates an MCP server whose sessions share one drafter built by factory.
func NewServer(factory app.DrafterFactory, opts ...app.SessionOption) (*Server, error) {
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		store:  app.NewSessionStore(app.Memoize(factory), opts...),
		logger: pkgLogger.NewComponentLogger("mcp-server"),
	}

	draftSchema, err := tool.SchemaJSON(&DraftArgs{})
	if err != nil {
		return nil, err
	}
	clearSchema, err := tool.SchemaJSON(&ClearArgs{})
	if err != nil {
		return nil, err
	}

	s.mcp.AddTool(mcp.NewToolWithRawSchema(DraftToolName,
		"Draft a formal legal notice for a consumer grievance, citing the applicable consumer law.",
		draftSchema), s.handleDraft)
	s.mcp.AddTool(mcp.NewToolWithRawSchema(ClearToolName,
		"Clear the conversation history used as context for later drafts.",
		clearSchema), s.handleClear)

	return s, nil
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio serves MCP over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	s.logger.InfoWithIntention(pkgLogger.IntentionNetwork, "Serving MCP over stdio")
	return errors.Wrap(server.ServeStdio(s.mcp), "mcp stdio server")
}

func sessionKey(id string) string {
	if id == "" {
		return defaultSession
	}
	return id
}

func (s *Server) handleDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grievance := req.GetString("grievance", "")
	session := s.store.GetOrCreate(sessionKey(req.GetString("session_id", "")))

	notice, err := session.DraftNotice(ctx, grievance)
	if err != nil {
		s.logger.WarnWithIntention(pkgLogger.IntentionError, "Draft failed", "session_id", session.ID(), "error", err)
		return mcp.NewToolResultError(app.RenderError(err)), nil
	}
	return mcp.NewToolResultText(notice), nil
}

func (s *Server) handleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := sessionKey(req.GetString("session_id", ""))
	if session, ok := s.store.Get(id); ok {
		session.ClearHistory()
	}
	return mcp.NewToolResultText("Conversation history cleared."), nil
}
