package domain

import (
	"testing"

	"github.com/pkg/errors"
)

func TestTranscriptAppendExchange(t *testing.T) {
	var tr Transcript
	tr.AppendExchange("My landlord kept my deposit", "LEGAL NOTICE ...")

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Role != UserTurn || entries[0].Text != "My landlord kept my deposit" {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Role != AgentTurn || entries[1].Text != "LEGAL NOTICE ..." {
		t.Errorf("unexpected second entry %+v", entries[1])
	}
}

func TestTranscriptEntriesIsACopy(t *testing.T) {
	tr := NewTranscript([]TranscriptEntry{{Role: UserTurn, Text: "a"}})
	entries := tr.Entries()
	entries[0].Text = "mutated"
	entries = append(entries, TranscriptEntry{Role: AgentTurn, Text: "b"})

	if got := tr.Entries(); len(got) != 1 || got[0].Text != "a" {
		t.Errorf("transcript changed through a returned copy: %+v", got)
	}
}

func TestTranscriptClear(t *testing.T) {
	var tr Transcript
	tr.AppendExchange("q", "a")
	tr.Clear()
	if tr.Len() != 0 {
		t.Errorf("expected empty transcript after Clear, got %d entries", tr.Len())
	}
}

func TestConfigurationErrorNamesCredential(t *testing.T) {
	err := error(NewMissingCredentialError("TAVILY_API_KEY"))
	if err.Error() != "TAVILY_API_KEY is missing in .env" {
		t.Errorf("unexpected message %q", err.Error())
	}
	wrapped := errors.Wrap(err, "build agent")
	if !IsConfigurationError(wrapped) {
		t.Error("expected wrapped error to be recognised as configuration error")
	}
}

func TestAgentRuntimeErrorUnwraps(t *testing.T) {
	err := &AgentRuntimeError{State: StateFailed, Steps: 2, Err: ErrStepBudgetExhausted}
	if !errors.Is(err, ErrStepBudgetExhausted) {
		t.Error("expected AgentRuntimeError to unwrap to its cause")
	}
	perr := &ParseRecoveryError{Raw: "<function=", Reason: "truncated"}
	if !errors.Is(perr, ErrUnparsableOutput) {
		t.Error("expected ParseRecoveryError to match ErrUnparsableOutput")
	}
}
