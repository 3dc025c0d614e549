package executor

import (
	"fmt"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

// DefaultSystemPrompt is the fixed lawyer persona and drafting policy.
const DefaultSystemPrompt = `
    You are a Consumer Rights Lawyer.
    
    INSTRUCTIONS:
    1. Search for the law ONCE.
    2. Even if the search result is not perfect, WRITE THE LETTER immediately based on what you found.
    3. NEVER search twice.
    4. If you cannot find the specific section, quote "General Consumer Rights".
    5.
    - TONE: Professional, firm, and authoritative. Avoid emotional language; rely on factual assertions and legal consequences.
    - LANGUAGE: Use assertive terminology such as "Material Breach," "Deficiency in Service," "Unfair Trade Practice," and "Time is of the Essence.
    `

// FallbackCitation is quoted when no specific legal section was found.
const FallbackCitation = "General Consumer Rights"

// Slot is one position of the prompt template.
type Slot string

const (
	SlotSystem     Slot = "system"
	SlotTranscript Slot = "transcript"
	SlotInput      Slot = "input"
	SlotScratchpad Slot = "scratchpad"
)

// Template assembles the model conversation from its slots, in order.
type Template struct {
	System string
	Slots  []Slot
}

// DefaultTemplate is system policy, prior transcript, current input, scratchpad.
func DefaultTemplate() Template {
	return Template{
		System: DefaultSystemPrompt,
		Slots:  []Slot{SlotSystem, SlotTranscript, SlotInput, SlotScratchpad},
	}
}

// Render builds the messages for one model call.
func (t Template) Render(transcript []domain.TranscriptEntry, input string, scratchpad []message.Message) []message.Message {
	msgs := make([]message.Message, 0, len(transcript)+len(scratchpad)+2)
	for _, slot := range t.Slots {
		switch slot {
		case SlotSystem:
			msgs = append(msgs, message.NewSystemMessage(t.System))
		case SlotTranscript:
			for _, entry := range transcript {
				if entry.Role == domain.AgentTurn {
					msgs = append(msgs, message.NewAssistantMessage(entry.Text))
				} else {
					msgs = append(msgs, message.NewUserMessage(entry.Text))
				}
			}
		case SlotInput:
			msgs = append(msgs, message.NewUserMessage(input))
		case SlotScratchpad:
			msgs = append(msgs, scratchpad...)
		}
	}
	return msgs
}

func recoveryInstruction(reason string, searchUsed bool) string {
	if searchUsed {
		return fmt.Sprintf("Your previous reply could not be understood (%s). Do not call any tool. "+
			"Reply with the complete legal notice as plain text.", reason)
	}
	return fmt.Sprintf("Your previous reply could not be understood (%s). Reply either with a single call "+
		"to the search tool using a JSON object {\"query\": \"...\"} or with the complete legal notice as plain text.", reason)
}

func searchFailedInstruction(cause string) string {
	return fmt.Sprintf("No legal source could be retrieved (%s). Do not search again. "+
		"Write the letter now and quote %q as the legal basis.", cause, FallbackCitation)
}

func searchEmptyNote() string {
	return fmt.Sprintf("The search returned no specific section. Write the letter now and quote %q as the legal basis.", FallbackCitation)
}

func secondSearchInstruction() string {
	return fmt.Sprintf("%s. Write the complete legal notice now using what you already have.", domain.ErrSearchAlreadyUsed.Error())
}

func forceFinalInstruction() string {
	return fmt.Sprintf("You have used every available step. Do not call any tool. Write the complete legal notice now "+
		"based on the information above. If no specific section was found, quote %q.", FallbackCitation)
}

func fallbackLegalBasis() string {
	return fmt.Sprintf("\n\n**Legal Basis:** %s.", FallbackCitation)
}
