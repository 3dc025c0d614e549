package connectrpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/app"
	"github.com/fpt/notice-cli/pkg/agent/domain"
)

// Client calls notice.v1.NoticeService.
type Client struct {
	startSession  *connect.Client[StartSessionRequest, StartSessionResponse]
	draftNotice   *connect.Client[DraftNoticeRequest, DraftNoticeResponse]
	clearSession  *connect.Client[ClearSessionRequest, ClearSessionResponse]
	getTranscript *connect.Client[GetTranscriptRequest, GetTranscriptResponse]
}

// NewClient creates a client for the service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	opts := []connect.ClientOption{connect.WithCodec(jsonCodec{})}
	return &Client{
		startSession:  connect.NewClient[StartSessionRequest, StartSessionResponse](httpClient, baseURL+StartSessionProcedure, opts...),
		draftNotice:   connect.NewClient[DraftNoticeRequest, DraftNoticeResponse](httpClient, baseURL+DraftNoticeProcedure, opts...),
		clearSession:  connect.NewClient[ClearSessionRequest, ClearSessionResponse](httpClient, baseURL+ClearSessionProcedure, opts...),
		getTranscript: connect.NewClient[GetTranscriptRequest, GetTranscriptResponse](httpClient, baseURL+GetTranscriptProcedure, opts...),
	}
}

// StartSession opens a session and returns its ID.
func (c *Client) StartSession(ctx context.Context) (string, error) {
	resp, err := c.startSession.CallUnary(ctx, connect.NewRequest(&StartSessionRequest{}))
	if err != nil {
		return "", fromConnectError(err)
	}
	return resp.Msg.SessionID, nil
}

// DraftNotice drafts within sessionID.
func (c *Client) DraftNotice(ctx context.Context, sessionID, grievance string) (string, error) {
	resp, err := c.draftNotice.CallUnary(ctx, connect.NewRequest(&DraftNoticeRequest{
		SessionID: sessionID,
		Grievance: grievance,
	}))
	if err != nil {
		return "", fromConnectError(err)
	}
	return resp.Msg.Notice, nil
}

// DraftStateless drafts against a caller-held transcript and returns the notice
// with the updated transcript.
func (c *Client) DraftStateless(ctx context.Context, grievance string, transcript []domain.TranscriptEntry) (string, []domain.TranscriptEntry, error) {
	resp, err := c.draftNotice.CallUnary(ctx, connect.NewRequest(&DraftNoticeRequest{
		Grievance:  grievance,
		Transcript: transcript,
	}))
	if err != nil {
		return "", nil, fromConnectError(err)
	}
	return resp.Msg.Notice, resp.Msg.Transcript, nil
}

// ClearSession empties the session transcript.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	_, err := c.clearSession.CallUnary(ctx, connect.NewRequest(&ClearSessionRequest{SessionID: sessionID}))
	return fromConnectError(err)
}

// GetTranscript returns up to maxEntries recent entries, or all when maxEntries is 0.
func (c *Client) GetTranscript(ctx context.Context, sessionID string, maxEntries int) ([]domain.TranscriptEntry, error) {
	resp, err := c.getTranscript.CallUnary(ctx, connect.NewRequest(&GetTranscriptRequest{
		SessionID:  sessionID,
		MaxEntries: maxEntries,
	}))
	if err != nil {
		return nil, fromConnectError(err)
	}
	return resp.Msg.Entries, nil
}

// IsNotFound reports whether err means the session no longer exists.
func IsNotFound(err error) bool {
	return connect.CodeOf(err) == connect.CodeNotFound
}

// fromConnectError restores the domain errors that app.RenderError knows.
func fromConnectError(err error) error {
	if err == nil {
		return nil
	}
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return err
	}
	switch cerr.Code() {
	case connect.CodeInvalidArgument:
		if cerr.Message() == app.ErrEmptyGrievance.Error() {
			return app.ErrEmptyGrievance
		}
	case connect.CodeFailedPrecondition:
		return &domain.ConfigurationError{Reason: cerr.Message()}
	}
	return err
}
