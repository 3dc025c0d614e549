package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/infra"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
)

// REPL is the interactive front end over one Session.
type REPL struct {
	Session *Session
	Model   string
	Search  string
	Verbose bool
	Out     io.Writer
}

// SlashCommand represents a command that starts with /
type SlashCommand struct {
	Name        string
	Description string
	Handler     func(*REPL, []string) bool // Returns true if should exit
}

// DefaultTranscriptFile is where /save writes when no path is given.
const DefaultTranscriptFile = "notice-transcript.json"


func getSlashCommands() []SlashCommand {
	return []SlashCommand{
		{
			Name:        "help",
			Description: "Show available commands and usage information",
			Handler: func(r *REPL, _ []string) bool {
				r.showHelp()
				return false
			},
		},
		{
			Name:        "history",
			Description: "Show the conversation history",
			Handler: func(r *REPL, _ []string) bool {
				WriteTranscript(r.out(), r.Session.Transcript(), 1000)
				return false
			},
		},
		{
			Name:        "save",
			Description: "Save the conversation history to a JSON file",
			Handler: func(r *REPL, args []string) bool {
				path := DefaultTranscriptFile
				if len(args) > 0 {
					path = args[0]
				}
				repo := infra.NewFileTranscriptRepository(path)
				if err := SaveTranscript(r.Session, repo); err != nil {
					WriteError(r.out(), err, false)
					return false
				}
				fmt.Fprintf(r.out(), "💾 Transcript saved to %s\n", repo.Path())
				return false
			},
		},
		{
			Name:        "clear",
			Description: "Clear conversation history and start fresh",
			Handler: func(r *REPL, _ []string) bool {
				r.Session.ClearHistory()
				fmt.Fprintln(r.out(), "🧹 Conversation history cleared.")
				return false
			},
		},
		{
			Name:        "status",
			Description: "Show current session status",
			Handler: func(r *REPL, _ []string) bool {
				r.showStatus()
				return false
			},
		},
		{
			Name:        "log",
			Description: "Show the log file location",
			Handler: func(r *REPL, _ []string) bool {
				fmt.Fprintf(r.out(), "🗒️ Log file: %s\n", pkgLogger.LogFilePath())
				return false
			},
		},
		{
			Name:        "quit",
			Description: "Exit the interactive session",
			Handler: func(r *REPL, _ []string) bool {
				fmt.Fprintln(r.out(), "👋 Goodbye!")
				return true
			},
		},
		{
			Name:        "exit",
			Description: "Exit the interactive session (alias for quit)",
			Handler: func(r *REPL, _ []string) bool {
				fmt.Fprintln(r.out(), "👋 Goodbye!")
				return true
			},
		},
	}
}

func (r *REPL) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// handleSlashCommand processes commands that start with /
// Returns true if the command requests program exit.
func (r *REPL) handleSlashCommand(input string) bool {
	if strings.TrimSpace(input) == "/" {
		return r.showCommandSelector()
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	commandName := strings.TrimPrefix(parts[0], "/")
	commands := getSlashCommands()
	for _, cmd := range commands {
		if cmd.Name == commandName {
			return cmd.Handler(r, parts[1:])
		}
	}

	w := r.out()
	fmt.Fprintf(w, "❌ Unknown command: /%s\n", commandName)
	fmt.Fprintln(w, "💡 Available commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  /%s - %s\n", cmd.Name, cmd.Description)
	}
	return false
}

func (r *REPL) showCommandSelector() bool {
	commands := getSlashCommands()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Name | cyan }} - {{ .Description | faint }}",
		Inactive: "  {{ .Name | cyan }} - {{ .Description | faint }}",
		Selected: "{{ .Name | cyan }}",
	}

	searcher := func(input string, index int) bool {
		name := strings.ToLower(commands[index].Name)
		return strings.Contains(name, strings.ToLower(strings.TrimSpace(input)))
	}

	prompt := promptui.Select{
		Label:     "Choose a command",
		Items:     commands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			fmt.Fprintln(r.out(), "\nCancelled.")
			return false
		}
		fmt.Fprintf(r.out(), "Command selection failed: %v\n", err)
		return false
	}
	return commands[i].Handler(r, nil)
}

// Run reads grievances until /quit or EOF.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "> ",
		AutoComplete:           createAutoCompleter(),
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		HistorySearchFold:      true,
		HistoryLimit:           500,
		DisableAutoSaveHistory: true,
		FuncFilterInputRune:    filterInput,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize interactive mode")
	}
	defer rl.Close()

	w := r.out()
	colored := IsTerminal(os.Stdout)
	WriteSplashScreen(w, r.Model, r.Search, colored)
	fmt.Fprintln(w, InputPrompt)
	fmt.Fprintf(w, "  %s\n", InputExample)
	fmt.Fprintln(w, "💬 End a line with '\\' to continue on the next line. Commands start with '/'.")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	var pending []string
	for {
		if len(pending) > 0 {
			rl.SetPrompt(". ")
		} else {
			rl.SetPrompt("> ")
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 && len(pending) == 0 {
				return nil
			}
			pending = nil
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "failed to read input")
		}

		text, more := joinContinuation(pending, line)
		if more {
			pending = append(pending, text)
			continue
		}
		multiline := len(pending) > 0
		pending = nil

		if !multiline && strings.HasPrefix(strings.TrimSpace(text), "/") {
			if r.handleSlashCommand(strings.TrimSpace(text)) {
				return nil
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		rl.SaveHistory(text)

		r.draft(ctx, text, colored)
	}
}

func (r *REPL) draft(ctx context.Context, grievance string, colored bool) {
	execCtx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-execCtx.Done():
		}
	}()

	notice, err := RunDraft(execCtx, r.Session, grievance, DraftOptions{
		Spinner: !r.Verbose,
		Trace:   r.Verbose,
	})

	wasCanceled := errors.Is(execCtx.Err(), context.Canceled) && ctx.Err() == nil
	signal.Stop(sigChan)
	cancel()

	w := r.out()
	switch {
	case err != nil && wasCanceled:
		fmt.Fprintln(w, "🔄 Cancelled. Ready for your next grievance.")
	case err != nil:
		WriteError(w, err, colored)
	default:
		WriteNotice(w, notice, colored)
	}
}

// joinContinuation folds a line ending in a backslash into the pending
// buffer. It returns the text so far and whether more lines are expected.
func joinContinuation(pending []string, line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t")
	if strings.HasSuffix(trimmed, "\\") {
		return strings.TrimSuffix(trimmed, "\\"), true
	}
	if len(pending) == 0 {
		return line, false
	}
	return strings.Join(append(append([]string(nil), pending...), line), "\n"), false
}

func createAutoCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range getSlashCommands() {
		items = append(items, readline.PcItem("/"+cmd.Name))
	}
	items = append(items, readline.PcItem("/"))
	return readline.NewPrefixCompleter(items...)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func (r *REPL) showHelp() {
	w := r.out()
	fmt.Fprintln(w, "\n📚 Interactive Commands:")
	fmt.Fprintln(w, "  /                - Show interactive command selector")
	for _, cmd := range getSlashCommands() {
		fmt.Fprintf(w, "  /%-15s - %s\n", cmd.Name, cmd.Description)
	}
	fmt.Fprintln(w, "\n⌨️  Keys:")
	fmt.Fprintln(w, "  Ctrl+C           - Cancel the current draft or input")
	fmt.Fprintln(w, "  Ctrl+R           - Search this session's input history")
	fmt.Fprintln(w, "  \\ at line end    - Continue the grievance on the next line")
	fmt.Fprintln(w, "\n💡 Example:")
	fmt.Fprintf(w, "  > %s\n", strings.TrimPrefix(InputExample, "E.g., "))
}

func (r *REPL) showStatus() {
	w := r.out()
	entries := r.Session.Transcript()
	fmt.Fprintln(w, "\n📊 Session Status:")
	fmt.Fprintf(w, "  🆔 Session: %s\n", r.Session.ID())
	fmt.Fprintf(w, "  🧠 Model: %s\n", r.Model)
	fmt.Fprintf(w, "  🔍 Search: %s\n", r.Search)
	fmt.Fprintf(w, "  💬 Exchanges: %d\n", len(entries)/2)
}
