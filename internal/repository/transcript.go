package repository

import (
	"time"

	"github.com/fpt/notice-cli/pkg/agent/domain"
)

// TranscriptRecord is the stored form of a session transcript.
type TranscriptRecord struct {
	SessionID string                   `json:"session_id"`
	SavedAt   time.Time                `json:"saved_at"`
	Entries   []domain.TranscriptEntry `json:"entries"`
}

// TranscriptRepository persists exported transcripts.
type TranscriptRepository interface {
	Load() (TranscriptRecord, error)
	Save(record TranscriptRecord) error
}
