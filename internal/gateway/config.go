package gateway

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultAgentAddr      = "http://localhost:50051"
	defaultSessionTimeout = 30 * time.Minute
)

// Config is the gateway configuration, read from YAML.
type Config struct {
	AgentAddr      string        `yaml:"agent_addr"`      // notice RPC server, e.g. "http://localhost:50051"
	SessionTimeout string        `yaml:"session_timeout"` // idle time before a peer session is dropped (Go duration)
	Discord        DiscordConfig `yaml:"discord"`
}

// DiscordConfig holds Discord bot configuration.
type DiscordConfig struct {
	Token             string   `yaml:"token"`
	AllowedGuildIDs   []string `yaml:"allowed_guild_ids"`
	AllowedChannelIDs []string `yaml:"allowed_channel_ids"`
	AllowedUserIDs    []string `yaml:"allowed_user_ids"`
	MentionOnly       bool     `yaml:"mention_only"` // In guilds, only respond when @mentioned
}

// LoadConfig reads configuration from a YAML file. A token set in
// DISCORD_BOT_TOKEN overrides the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read gateway config %s", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse gateway config")
	}
	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}
	if cfg.AgentAddr == "" {
		cfg.AgentAddr = defaultAgentAddr
	}
	return cfg, nil
}

// DefaultConfig returns the defaults used for unset fields.
func DefaultConfig() *Config {
	return &Config{
		AgentAddr:      defaultAgentAddr,
		SessionTimeout: defaultSessionTimeout.String(),
	}
}

// SessionTimeoutDuration parses SessionTimeout, falling back to 30m.
func (c *Config) SessionTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTimeout)
	if err != nil || d <= 0 {
		return defaultSessionTimeout
	}
	return d
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".notice", "gateway.yaml")
}
