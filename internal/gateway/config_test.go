package gateway

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	data := `agent_addr: http://agent:50051
session_timeout: 45m
discord:
  token: file-token
  mention_only: true
  allowed_user_ids: [u1, u2]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AgentAddr != "http://agent:50051" {
		t.Errorf("AgentAddr = %q", cfg.AgentAddr)
	}
	if cfg.SessionTimeoutDuration() != 45*time.Minute {
		t.Errorf("timeout = %v", cfg.SessionTimeoutDuration())
	}
	if cfg.Discord.Token != "file-token" || !cfg.Discord.MentionOnly || len(cfg.Discord.AllowedUserIDs) != 2 {
		t.Errorf("discord = %+v", cfg.Discord)
	}
}

func TestLoadConfigEnvTokenAndDefaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "env-token")
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte("session_timeout: nonsense\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("token = %q", cfg.Discord.Token)
	}
	if cfg.AgentAddr != defaultAgentAddr {
		t.Errorf("AgentAddr = %q", cfg.AgentAddr)
	}
	if cfg.SessionTimeoutDuration() != 30*time.Minute {
		t.Errorf("timeout = %v", cfg.SessionTimeoutDuration())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
