package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fpt/notice-cli/internal/infra"
	"github.com/fpt/notice-cli/internal/repository"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// LLM backends
const (
	BackendGroq      = "groq"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendGemini    = "gemini"
	BackendOllama    = "ollama"
)

// Search providers
const (
	ProviderTavily     = "tavily"
	ProviderDuckDuckGo = "duckduckgo"
)

// Settings represents the main application settings
type Settings struct {
	LLM    LLMSettings    `json:"llm" yaml:"llm"`
	Search SearchSettings `json:"search" yaml:"search"`
	Agent  AgentSettings  `json:"agent" yaml:"agent"`
	Server ServerSettings `json:"server" yaml:"server"`

	// Repository for persistence (nil for in-memory only)
	settingsRepository repository.SettingsRepository
}

// LLMSettings contains LLM client configuration
type LLMSettings struct {
	Backend   string `json:"backend" yaml:"backend"`                           // "groq", "openai", "anthropic", "gemini" or "ollama"
	Model     string `json:"model" yaml:"model"`                               // model name
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`     // OpenAI-compatible endpoint or Ollama host
	MaxTokens int    `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"` // maximum tokens for the drafted notice
}

// SearchSettings selects the legal-research provider
type SearchSettings struct {
	Provider string `json:"provider" yaml:"provider"`                     // "tavily" or "duckduckgo"
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"` // override for proxies and tests
	Timeout  string `json:"timeout,omitempty" yaml:"timeout,omitempty"`   // per search request
}

// AgentSettings contains request handling configuration
type AgentSettings struct {
	LogLevel       string `json:"log_level" yaml:"log_level"`
	RequestTimeout string `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"` // applied around a whole draft
}

// ServerSettings configures the RPC service
type ServerSettings struct {
	Addr string `json:"addr" yaml:"addr"`
}

func (s SearchSettings) TimeoutDuration() time.Duration {
	return parseDurationOr(s.Timeout, 10*time.Second)
}

func (a AgentSettings) RequestTimeoutDuration() time.Duration {
	return parseDurationOr(a.RequestTimeout, 90*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}

// NewSettings creates new settings with in-memory repository
func NewSettings() *Settings {
	return NewSettingsWithRepository(infra.NewInMemorySettingsRepository())
}

// NewSettingsWithRepository creates new settings with injected repository
func NewSettingsWithRepository(settingsRepository repository.SettingsRepository) *Settings {
	settings := GetDefaultSettings()
	settings.settingsRepository = settingsRepository
	return settings
}

// NewSettingsWithPath creates new settings with file-based repository
func NewSettingsWithPath(configPath string) *Settings {
	return NewSettingsWithRepository(infra.NewFileSettingsRepository(configPath))
}

// Load loads settings from the repository
func (s *Settings) Load() error {
	if s.settingsRepository == nil {
		return errors.New("no settings repository configured")
	}

	data, err := s.settingsRepository.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load settings")
	}

	if err := decode(data, s.settingsRepository.Format(), s); err != nil {
		return errors.Wrap(err, "failed to parse settings")
	}

	applyDefaults(s)
	return nil
}

// Save saves settings to the repository
func (s *Settings) Save() error {
	if s.settingsRepository == nil {
		return errors.New("no settings repository configured")
	}

	data, err := encode(s, s.settingsRepository.Format())
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}
	return s.settingsRepository.Save(data)
}

func decode(data []byte, format string, s *Settings) error {
	if format == "yaml" {
		return yaml.Unmarshal(data, s)
	}
	return json.Unmarshal(data, s)
}

func encode(s *Settings, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(s)
	}
	return json.MarshalIndent(s, "", "  ")
}

// LoadSettings loads application settings from a JSON or YAML file.
// With an empty path the usual locations are searched and a default file is
// created under $HOME when none exists.
func LoadSettings(configPath string) (*Settings, error) {
	settings := NewSettingsWithPath(configPath)

	if configPath == "" {
		foundPath, _ := settings.settingsRepository.FindSettingsFile()
		if foundPath == "" {
			return createDefaultSettingsFile()
		}
	}

	if err := settings.Load(); err != nil {
		if configPath != "" {
			if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
				return createSettingsFileAtPath(configPath)
			}
			return nil, err
		}
		return GetDefaultSettings(), nil
	}

	return settings, nil
}

// GetDefaultSettings returns default application settings
func GetDefaultSettings() *Settings {
	return &Settings{
		LLM: GetDefaultLLMSettingsForBackend(BackendGroq),
		Search: SearchSettings{
			Provider: ProviderTavily,
			Timeout:  "10s",
		},
		Agent: AgentSettings{
			LogLevel:       "info",
			RequestTimeout: "90s",
		},
		Server: ServerSettings{
			Addr: ":50051",
		},
	}
}

// GetDefaultLLMSettingsForBackend returns default LLM settings for a specific backend
func GetDefaultLLMSettingsForBackend(backend string) LLMSettings {
	switch backend {
	case BackendOpenAI:
		return LLMSettings{Backend: BackendOpenAI, Model: "gpt-4o-mini", MaxTokens: 2048}
	case BackendAnthropic, "claude":
		return LLMSettings{Backend: BackendAnthropic, Model: "claude-sonnet-4-5", MaxTokens: 2048}
	case BackendGemini:
		return LLMSettings{Backend: BackendGemini, Model: "gemini-2.5-flash", MaxTokens: 2048}
	case BackendOllama:
		return LLMSettings{Backend: BackendOllama, Model: "llama3.1:8b", BaseURL: "http://localhost:11434", MaxTokens: 2048}
	default:
		return LLMSettings{Backend: BackendGroq, Model: "llama-3.1-8b-instant", MaxTokens: 2048}
	}
}

// WithDefaults returns a copy of s with missing fields filled in and
// backend names normalized. s is not modified.
func (s *Settings) WithDefaults() *Settings {
	c := *s
	applyDefaults(&c)
	return &c
}

// applyDefaults fills in missing fields with default values
func applyDefaults(settings *Settings) {
	defaults := GetDefaultSettings()

	if settings.LLM.Backend == "" {
		settings.LLM.Backend = defaults.LLM.Backend
	}
	settings.LLM.Backend = strings.ToLower(settings.LLM.Backend)
	if settings.LLM.Backend == "claude" {
		settings.LLM.Backend = BackendAnthropic
	}
	backendDefaults := GetDefaultLLMSettingsForBackend(settings.LLM.Backend)
	if settings.LLM.Model == "" {
		settings.LLM.Model = backendDefaults.Model
	}
	if settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = backendDefaults.BaseURL
	}
	if settings.LLM.MaxTokens <= 0 {
		settings.LLM.MaxTokens = backendDefaults.MaxTokens
	}

	if settings.Search.Provider == "" {
		settings.Search.Provider = defaults.Search.Provider
	}
	settings.Search.Provider = strings.ToLower(settings.Search.Provider)
	if settings.Search.Timeout == "" {
		settings.Search.Timeout = defaults.Search.Timeout
	}

	if settings.Agent.LogLevel == "" {
		settings.Agent.LogLevel = defaults.Agent.LogLevel
	}
	if settings.Agent.RequestTimeout == "" {
		settings.Agent.RequestTimeout = defaults.Agent.RequestTimeout
	}
	if settings.Server.Addr == "" {
		settings.Server.Addr = defaults.Server.Addr
	}
}

// ApplyOverrides applies command-line overrides on top of loaded settings.
// Switching backend without naming a model resets the model to that backend's default.
func (s *Settings) ApplyOverrides(backend, model, provider string) {
	if backend != "" && backend != s.LLM.Backend {
		s.LLM = GetDefaultLLMSettingsForBackend(strings.ToLower(backend))
	}
	if model != "" {
		s.LLM.Model = model
	}
	if provider != "" {
		s.Search.Provider = provider
	}
	applyDefaults(s)
}

// ValidateSettings validates the settings configuration. Credentials are
// checked later, when the agent is built.
func ValidateSettings(settings *Settings) error {
	switch settings.LLM.Backend {
	case BackendGroq, BackendOpenAI, BackendAnthropic, BackendGemini, BackendOllama:
	default:
		return errors.Errorf("unsupported LLM backend: %s (must be 'groq', 'openai', 'anthropic', 'gemini', or 'ollama')", settings.LLM.Backend)
	}

	if settings.LLM.Model == "" {
		return errors.New("LLM model is required")
	}

	switch settings.Search.Provider {
	case ProviderTavily, ProviderDuckDuckGo:
	default:
		return errors.Errorf("unsupported search provider: %s (must be 'tavily' or 'duckduckgo')", settings.Search.Provider)
	}

	for name, value := range map[string]string{
		"search.timeout":        settings.Search.Timeout,
		"agent.request_timeout": settings.Agent.RequestTimeout,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return errors.Errorf("%s must be a positive duration, got %q", name, value)
		}
	}

	return nil
}

// createDefaultSettingsFile creates a default settings.json file in ~/.notice/
func createDefaultSettingsFile() (*Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return GetDefaultSettings(), nil
	}
	return createSettingsFileAtPath(filepath.Join(homeDir, infra.SettingsDirName, "settings.json"))
}

// createSettingsFileAtPath creates a default settings file at the specified path
func createSettingsFileAtPath(settingsPath string) (*Settings, error) {
	settings := NewSettingsWithPath(settingsPath)

	if err := settings.Save(); err != nil {
		return GetDefaultSettings(), nil
	}

	logger := pkgLogger.NewComponentLogger("settings")
	logger.InfoWithIntention(pkgLogger.IntentionConfig, "Created default settings file", "path", settingsPath)
	logger.DebugWithIntention(pkgLogger.IntentionStatus, "You can edit this file to customize your configuration")

	return settings, nil
}
