package connectrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/app"
	"github.com/fpt/notice-cli/pkg/agent/domain"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// NoticeServer serves notice.v1.NoticeService over Connect.
type NoticeServer struct {
	store   *app.SessionStore
	factory app.DrafterFactory
	opts    []app.SessionOption
	model   string
	search  string
	logger  *pkgLogger.Logger
}

// ServerOption configures a NoticeServer.
type ServerOption func(*NoticeServer)

// WithBackendInfo names the model and search provider reported by StartSession.
func WithBackendInfo(model, search string) ServerOption {
	return func(s *NoticeServer) {
		s.model = model
		s.search = search
	}
}

// WithSessionOptions applies opts to every session the server creates.
func WithSessionOptions(opts ...app.SessionOption) ServerOption {
	return func(s *NoticeServer) { s.opts = append(s.opts, opts...) }
}

// NewNoticeServer creates a server whose sessions share one drafter built by factory.
func NewNoticeServer(factory app.DrafterFactory, opts ...ServerOption) *NoticeServer {
	s := &NoticeServer{
		factory: app.Memoize(factory),
		logger:  pkgLogger.NewComponentLogger("connect-server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = app.NewSessionStore(s.factory, s.opts...)
	return s
}

// Store exposes the live sessions.
func (s *NoticeServer) Store() *app.SessionStore { return s.store }

// Handler returns the mux serving every procedure of the service.
func (s *NoticeServer) Handler() http.Handler {
	opts := []connect.HandlerOption{connect.WithCodec(jsonCodec{})}

	mux := http.NewServeMux()
	mux.Handle(StartSessionProcedure, connect.NewUnaryHandler(StartSessionProcedure, s.StartSession, opts...))
	mux.Handle(DraftNoticeProcedure, connect.NewUnaryHandler(DraftNoticeProcedure, s.DraftNotice, opts...))
	mux.Handle(ClearSessionProcedure, connect.NewUnaryHandler(ClearSessionProcedure, s.ClearSession, opts...))
	mux.Handle(GetTranscriptProcedure, connect.NewUnaryHandler(GetTranscriptProcedure, s.GetTranscript, opts...))
	return mux
}

func (s *NoticeServer) StartSession(ctx context.Context, req *connect.Request[StartSessionRequest]) (*connect.Response[StartSessionResponse], error) {
	session := s.store.Create()
	s.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Session started", "session_id", session.ID())
	return connect.NewResponse(&StartSessionResponse{
		SessionID: session.ID(),
		Model:     s.model,
		Search:    s.search,
	}), nil
}

func (s *NoticeServer) DraftNotice(ctx context.Context, req *connect.Request[DraftNoticeRequest]) (*connect.Response[DraftNoticeResponse], error) {
	msg := req.Msg

	var session *app.Session
	stateless := msg.SessionID == ""
	if stateless {
		session = app.NewSession(s.factory, append(append([]app.SessionOption(nil), s.opts...), app.WithTranscript(msg.Transcript))...)
	} else {
		var err error
		if session, err = s.getSession(msg.SessionID); err != nil {
			return nil, err
		}
	}

	notice, err := session.DraftNotice(ctx, msg.Grievance)
	if err != nil {
		s.logger.WarnWithIntention(pkgLogger.IntentionError, "Draft failed", "session_id", msg.SessionID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &DraftNoticeResponse{Notice: notice}
	if stateless {
		resp.Transcript = session.Transcript()
	}
	return connect.NewResponse(resp), nil
}

func (s *NoticeServer) ClearSession(ctx context.Context, req *connect.Request[ClearSessionRequest]) (*connect.Response[ClearSessionResponse], error) {
	session, err := s.getSession(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	session.ClearHistory()
	s.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Session cleared", "session_id", req.Msg.SessionID)
	return connect.NewResponse(&ClearSessionResponse{}), nil
}

func (s *NoticeServer) GetTranscript(ctx context.Context, req *connect.Request[GetTranscriptRequest]) (*connect.Response[GetTranscriptResponse], error) {
	session, err := s.getSession(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	entries := session.Transcript()
	if n := req.Msg.MaxEntries; n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return connect.NewResponse(&GetTranscriptResponse{Entries: entries}), nil
}

func (s *NoticeServer) getSession(id string) (*app.Session, error) {
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("session_id is required"))
	}
	session, ok := s.store.Get(id)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, errors.Errorf("session %q not found", id))
	}
	return session, nil
}

// toConnectError maps drafting errors onto Connect codes. The message keeps
// the original text so clients can render it.
func toConnectError(err error) error {
	var ce *domain.ConfigurationError
	switch {
	case errors.Is(err, app.ErrEmptyGrievance):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &ce):
		return connect.NewError(connect.CodeFailedPrecondition, ce)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
