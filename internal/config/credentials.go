package config

import "strings"

// ModelCredentialName is the environment variable holding the API key for
// an LLM backend. An empty backend means the default, Groq. Local backends
// need none and return "".
func ModelCredentialName(backend string) string {
	switch strings.ToLower(backend) {
	case BackendGroq, "":
		return "GROQ_API_KEY"
	case BackendOpenAI:
		return "OPENAI_API_KEY"
	case BackendAnthropic, "claude":
		return "ANTHROPIC_API_KEY"
	case BackendGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// SearchCredentialName is the environment variable holding the API key for
// a search provider, or "" for keyless providers. An empty provider means
// Tavily.
func SearchCredentialName(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderTavily, "":
		return "TAVILY_API_KEY"
	default:
		return ""
	}
}
