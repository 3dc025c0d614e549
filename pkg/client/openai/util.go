package openai

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/pkg/errors"
)

var failedGenerationPattern = regexp.MustCompile(`"failed_generation"\s*:\s*("(?:[^"\\]|\\.)*")`)

// failedGeneration detects Groq's tool_use_failed rejection, which carries the
// model's unparsable output instead of a completion.
func failedGeneration(err error) (string, bool) {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		return "", false
	}
	text := err.Error()
	if !strings.Contains(text, "tool_use_failed") {
		return "", false
	}
	if m := failedGenerationPattern.FindStringSubmatch(text); m != nil {
		if raw, uerr := strconv.Unquote(m[1]); uerr == nil {
			return raw, true
		}
	}
	return text, true
}
