package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrStepBudgetExhausted is the cause of a run that used every step without a usable answer.
	ErrStepBudgetExhausted = errors.New("step budget exhausted without a final answer")
	// ErrUnparsableOutput marks model output that is neither a tool call nor a final answer.
	ErrUnparsableOutput = errors.New("model output could not be classified")
	// ErrSearchAlreadyUsed is reported to the model when it asks for a second search.
	ErrSearchAlreadyUsed = errors.New("the search tool may only be used once per request")
)

// ConfigurationError reports a required credential that is absent.
type ConfigurationError struct {
	Credential string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s is missing in .env", e.Credential)
}

// NewMissingCredentialError names the missing credential.
func NewMissingCredentialError(name string) *ConfigurationError {
	return &ConfigurationError{Credential: name}
}

// ToolInvocationError wraps a failed search call.
type ToolInvocationError struct {
	Tool  string
	Query string
	Err   error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("tool %s failed for query %q: %v", e.Tool, e.Query, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// ParseRecoveryError records model output that could not be classified.
type ParseRecoveryError struct {
	Raw    string
	Reason string
}

func (e *ParseRecoveryError) Error() string {
	return fmt.Sprintf("unparsable model output (%s)", e.Reason)
}

func (e *ParseRecoveryError) Unwrap() error { return ErrUnparsableOutput }

// AgentRuntimeError is the single failure type returned by a run.
type AgentRuntimeError struct {
	State AgentState
	Steps int
	Err   error
}

func (e *AgentRuntimeError) Error() string {
	return fmt.Sprintf("agent run failed after %d step(s): %v", e.Steps, e.Err)
}

func (e *AgentRuntimeError) Unwrap() error { return e.Err }

// MalformedGenerationError is returned by a model client when the provider
// rejected a generation it could not parse, carrying the raw output.
type MalformedGenerationError struct {
	Raw string
	Err error
}

func (e *MalformedGenerationError) Error() string {
	return fmt.Sprintf("provider rejected malformed generation: %v", e.Err)
}

func (e *MalformedGenerationError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
