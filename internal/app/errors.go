package app

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
)

// ErrEmptyGrievance rejects blank input before any agent work.
var ErrEmptyGrievance = errors.New("Please describe your issue first.")

// RenderError formats an error for display at a front end.
func RenderError(err error) string {
	var ce *domain.ConfigurationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyGrievance):
		return ErrEmptyGrievance.Error()
	case errors.As(err, &ce):
		return fmt.Sprintf("Configuration Error: %s", ce.Error())
	default:
		return fmt.Sprintf("An unexpected error occurred: %s", err.Error())
	}
}
