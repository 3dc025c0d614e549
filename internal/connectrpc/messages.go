package connectrpc

import "github.com/fpt/notice-cli/pkg/agent/domain"

// Procedure paths of notice.v1.NoticeService.
const (
	ServiceName            = "notice.v1.NoticeService"
	StartSessionProcedure  = "/" + ServiceName + "/StartSession"
	DraftNoticeProcedure   = "/" + ServiceName + "/DraftNotice"
	ClearSessionProcedure  = "/" + ServiceName + "/ClearSession"
	GetTranscriptProcedure = "/" + ServiceName + "/GetTranscript"
)

type StartSessionRequest struct{}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model,omitempty"`
	Search    string `json:"search,omitempty"`
}

// DraftNoticeRequest drafts within SessionID, or statelessly against
// Transcript when SessionID is empty.
type DraftNoticeRequest struct {
	SessionID  string                   `json:"session_id,omitempty"`
	Grievance  string                   `json:"grievance"`
	Transcript []domain.TranscriptEntry `json:"transcript,omitempty"`
}

type DraftNoticeResponse struct {
	Notice string `json:"notice"`
	// Transcript is the updated history, returned for stateless calls.
	Transcript []domain.TranscriptEntry `json:"transcript,omitempty"`
}

type ClearSessionRequest struct {
	SessionID string `json:"session_id"`
}

type ClearSessionResponse struct{}

type GetTranscriptRequest struct {
	SessionID string `json:"session_id"`
	// MaxEntries limits the result to the most recent entries when positive.
	MaxEntries int `json:"max_entries,omitempty"`
}

type GetTranscriptResponse struct {
	Entries []domain.TranscriptEntry `json:"entries"`
}
