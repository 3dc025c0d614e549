package app

import (
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/config"
	"github.com/fpt/notice-cli/internal/tool"
	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/agent/executor"
	"github.com/fpt/notice-cli/pkg/client"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// ModelTemperature keeps drafting deterministic.
const ModelTemperature = 0.0

// BuildAgent binds the configured model, the search tool and the fixed
// prompt into an executor. Missing settings fields take their defaults
// before credentials are resolved. Credentials come only from env; the model
// key is checked before the search key. No network call is made.
func BuildAgent(settings *config.Settings, env config.Environment) (*executor.Executor, error) {
	if settings == nil {
		settings = config.GetDefaultSettings()
	}
	settings = settings.WithDefaults()

	modelKey, err := requireCredential(env, config.ModelCredentialName(settings.LLM.Backend))
	if err != nil {
		return nil, err
	}
	searchKey, err := requireCredential(env, config.SearchCredentialName(settings.Search.Provider))
	if err != nil {
		return nil, err
	}

	searcher, err := NewSearcher(settings.Search, searchKey)
	if err != nil {
		return nil, err
	}
	tools := tool.NewSearchToolManager(searcher, tool.DefaultSearchOptions())

	base, err := client.NewLLMClient(settings.LLM, modelKey, ModelTemperature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM client")
	}
	llm, err := client.NewClientWithToolManager(base, tools)
	if err != nil {
		return nil, err
	}

	pkgLogger.NewComponentLogger("configurator").DebugWithIntention(pkgLogger.IntentionConfig, "Agent configured",
		"backend", settings.LLM.Backend, "model", llm.ModelID(), "search", searcher.Name())

	return executor.New(executor.Config{
		Model:    llm,
		Tools:    tools,
		Template: executor.DefaultTemplate(),
		Policy:   executor.DefaultPolicy(),
	})
}

// NewSearcher creates the configured search provider.
func NewSearcher(settings config.SearchSettings, apiKey string) (domain.Searcher, error) {
	switch settings.Provider {
	case config.ProviderTavily, "":
		return tool.NewTavily(apiKey, settings.BaseURL, settings.TimeoutDuration()), nil
	case config.ProviderDuckDuckGo:
		return tool.NewDuckDuckGo(settings.BaseURL, settings.TimeoutDuration()), nil
	default:
		return nil, errors.Errorf("unsupported search provider: %s", settings.Provider)
	}
}

// requireCredential returns the value of name, or a ConfigurationError when
// it is unset. An empty name means no credential is needed.
func requireCredential(env config.Environment, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	value, ok := env.Lookup(name)
	if !ok {
		return "", domain.NewMissingCredentialError(name)
	}
	return value, nil
}
