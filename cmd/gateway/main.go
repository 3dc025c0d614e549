package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/connectrpc"
	"github.com/fpt/notice-cli/internal/gateway"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to gateway config (default: $HOME/.notice/gateway.yaml)")
	agentAddr := flag.String("agent-addr", "", "notice RPC server URL (overrides agent_addr)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	pkgLogger.SetGlobalLoggerWithConsoleWriter(pkgLogger.ParseLogLevel(*logLevel), os.Stdout)
	logger := pkgLogger.NewComponentLogger("gateway-main")

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = gateway.DefaultConfigPath()
	}

	cfg, err := gateway.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", cfgPath, err)
		fmt.Fprintf(os.Stderr, "Create a config file or specify -config path\n")
		os.Exit(1)
	}
	if *agentAddr != "" {
		cfg.AgentAddr = *agentAddr
	}

	client := connectrpc.NewClient(nil, cfg.AgentAddr)
	gw, err := gateway.NewGateway(cfg, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create gateway: %v\n", err)
		os.Exit(1)
	}
	defer gw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.InfoWithIntention(pkgLogger.IntentionCancel, "Received signal, shutting down", "signal", sig)
		cancel()
	}()

	fmt.Println("notice gateway starting...")
	fmt.Printf("  Agent: %s\n", cfg.AgentAddr)
	fmt.Printf("  Session timeout: %s\n", cfg.SessionTimeoutDuration())
	if cfg.Discord.Token != "" {
		fmt.Println("  Discord: enabled")
	}
	fmt.Println()

	if err := gw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Gateway error: %v\n", err)
		os.Exit(1)
	}
}
