package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/app"
	"github.com/fpt/notice-cli/internal/config"
	"github.com/fpt/notice-cli/internal/connectrpc"
	"github.com/fpt/notice-cli/internal/infra"
	"github.com/fpt/notice-cli/internal/mcp"
	"github.com/fpt/notice-cli/pkg/agent/executor"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// turnSeparator splits a -f file into consecutive grievances.
const turnSeparator = "----"

// resolveStringFlag returns the non-empty value, preferring short flag over long flag
func resolveStringFlag(shortVal, longVal string) string {
	if shortVal != "" {
		return shortVal
	}
	return longVal
}

func printUsage() {
	fmt.Println("notice - drafts formal legal notices for consumer grievances")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  notice                                         # Interactive mode")
	fmt.Println("  notice \"My landlord kept my ₹20,000 deposit\"   # One-shot mode")
	fmt.Println("  notice -f grievances.txt                       # Turns separated by '----', history kept")
	fmt.Println("  notice -resume notice-transcript.json          # Continue a conversation saved with /save")
	fmt.Println("  notice -b ollama -search duckduckgo \"...\"      # Keyless local setup")
	fmt.Println("  notice -serve -addr :50051                     # Connect RPC server")
	fmt.Println("  notice -mcp                                    # MCP server over stdio")
	fmt.Println()
	fmt.Println("Credentials are read from .env or the environment:")
	fmt.Println("  GROQ_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, TAVILY_API_KEY")
	fmt.Println()
}

func main() {
	var backend = flag.String("b", "", "LLM backend (groq, openai, anthropic, gemini, ollama)")
	var backendLong = flag.String("backend", "", "LLM backend (groq, openai, anthropic, gemini, ollama)")
	var model = flag.String("m", "", "Model name to use")
	var modelLong = flag.String("model", "", "Model name to use")
	var search = flag.String("search", "", "Search provider (tavily, duckduckgo)")
	var settingsPath = flag.String("settings", "", "Path to settings file")
	var envFile = flag.String("env", ".env", "Path to the .env file holding API keys")
	var logLevel = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	var promptFile = flag.String("f", "", "File of grievances separated by '----' (history kept between turns)")
	var resume = flag.String("resume", "", "Transcript file saved with /save to continue from")
	var verbose = flag.Bool("v", false, "Trace agent steps and enable debug logging")
	var verboseLong = flag.Bool("verbose", false, "Trace agent steps and enable debug logging")
	var serve = flag.Bool("serve", false, "Serve the Connect RPC API")
	var addr = flag.String("addr", "", "Listen address for -serve (default from settings)")
	var mcpMode = flag.Bool("mcp", false, "Serve MCP tools over stdio")
	var help = flag.Bool("h", false, "Show this help message")

	flag.Usage = func() {
		printUsage()
		fmt.Println("Flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	resolvedVerbose := *verbose || *verboseLong
	args := flag.Args()

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load settings: %v\n", err)
		settings = config.GetDefaultSettings()
	}
	settings.ApplyOverrides(resolveStringFlag(*backend, *backendLong), resolveStringFlag(*model, *modelLong), *search)
	if *logLevel != "" {
		settings.Agent.LogLevel = *logLevel
	}
	if *addr != "" {
		settings.Server.Addr = *addr
	}

	interactive := len(args) == 0 && *promptFile == "" && !*serve && !*mcpMode
	useSpinner := !resolvedVerbose && !*serve && !*mcpMode && app.IsTerminal(os.Stderr)
	setupLogging(settings.Agent.LogLevel, resolvedVerbose, useSpinner)
	logger := pkgLogger.NewComponentLogger("main")

	if err := config.ValidateSettings(settings); err != nil {
		logger.ErrorWithIntention(pkgLogger.IntentionConfig, "Settings validation failed", "error", err)
		os.Exit(1)
	}

	env, err := config.LoadEnvironment(*envFile)
	if err != nil {
		logger.ErrorWithIntention(pkgLogger.IntentionConfig, "Failed to load environment", "error", err)
		os.Exit(1)
	}

	factory := app.AgentFactory(func() (*executor.Executor, error) {
		return app.BuildAgent(settings, env)
	})
	timeout := app.WithRequestTimeout(settings.Agent.RequestTimeoutDuration())
	sessionOpts := []app.SessionOption{timeout}
	if *resume != "" {
		seed, err := app.LoadTranscript(infra.NewFileTranscriptRepository(*resume))
		if err != nil {
			logger.ErrorWithIntention(pkgLogger.IntentionConfig, "Failed to resume transcript", "file", *resume, "error", err)
			os.Exit(1)
		}
		sessionOpts = append(sessionOpts, seed)
	}

	switch {
	case *mcpMode:
		srv, err := mcp.NewServer(factory, timeout)
		if err == nil {
			err = srv.ServeStdio()
		}
		exitOnError(logger, err)

	case *serve:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		srv := connectrpc.NewNoticeServer(factory,
			connectrpc.WithBackendInfo(settings.LLM.Model, settings.Search.Provider),
			connectrpc.WithSessionOptions(timeout))
		fmt.Printf("notice server listening on %s\n", settings.Server.Addr)
		exitOnError(logger, connectrpc.StartServer(ctx, settings.Server.Addr, srv))

	case *promptFile != "":
		session := app.NewSession(app.Memoize(factory), sessionOpts...)
		exitOnError(logger, executeTurnsFile(session, *promptFile, draftOptions(resolvedVerbose, useSpinner)))

	case !interactive:
		session := app.NewSession(factory, sessionOpts...)
		if err := executeGrievance(session, strings.Join(args, " "), draftOptions(resolvedVerbose, useSpinner)); err != nil {
			os.Exit(1)
		}

	default:
		repl := &app.REPL{
			Session: app.NewSession(factory, sessionOpts...),
			Model:   settings.LLM.Model,
			Search:  settings.Search.Provider,
			Verbose: resolvedVerbose,
		}
		exitOnError(logger, repl.Run(context.Background()))
	}
}

// setupLogging keeps the console quiet while the spinner owns the terminal;
// the file log always records at the configured level.
func setupLogging(level string, verbose, spinner bool) {
	fileLevel := pkgLogger.ParseLogLevel(level)
	consoleLevel := fileLevel
	switch {
	case verbose:
		fileLevel = pkgLogger.LogLevelDebug
		consoleLevel = pkgLogger.LogLevelDebug
	case spinner:
		consoleLevel = pkgLogger.LogLevelWarn
	}
	pkgLogger.SetGlobalLoggerWithLevels(consoleLevel, fileLevel, os.Stderr)
}

func draftOptions(verbose, spinner bool) app.DraftOptions {
	return app.DraftOptions{Spinner: spinner, Trace: verbose, TraceWriter: os.Stderr}
}

func executeGrievance(session *app.Session, grievance string, opts app.DraftOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notice, err := app.RunDraft(ctx, session, grievance, opts)
	if err != nil {
		app.WriteError(os.Stderr, err, app.IsTerminal(os.Stderr))
		return err
	}
	app.WriteNotice(os.Stdout, notice, app.IsTerminal(os.Stdout))
	return nil
}

func executeTurnsFile(session *app.Session, filePath string, opts app.DraftOptions) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read grievance file '%s'", filePath)
	}

	var turns []string
	for _, t := range strings.Split(string(content), turnSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			turns = append(turns, t)
		}
	}
	if len(turns) == 0 {
		return errors.Errorf("no grievances found in file '%s'", filePath)
	}

	fmt.Printf("Drafting %d notices from file: %s\n\n", len(turns), filePath)
	failed := 0
	for i, turn := range turns {
		fmt.Printf("Turn %d/%d: %s\n\n", i+1, len(turns), turn)
		if err := executeGrievance(session, turn, opts); err != nil {
			failed++
		}
		fmt.Printf("%s\n\n", strings.Repeat("-", 60))
	}
	if failed > 0 {
		return errors.Errorf("%d of %d turns failed", failed, len(turns))
	}
	fmt.Println("All turns completed.")
	return nil
}

func exitOnError(logger *pkgLogger.Logger, err error) {
	if err == nil {
		return
	}
	logger.ErrorWithIntention(pkgLogger.IntentionError, "notice exited with error", "error", err)
	os.Exit(1)
}
